package options

import "testing"

func TestAdminOptionsValidateDefaults(t *testing.T) {
	o := NewAdminOptions()
	errs := o.Validate()
	if len(errs) == 0 {
		t.Fatal("Validate() errs = empty, want errors: defaults carry no credential material")
	}
}

func TestAdminOptionsValidateComplete(t *testing.T) {
	o := NewAdminOptions()
	o.Username = "root"
	o.PasswordHash = "$2a$10$somethinglongenough"
	o.JWTSecret = "secret"

	if errs := o.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() errs = %v, want none", errs)
	}
}
