package options

import "testing"

func TestWireGuardOptionsValidateJunk(t *testing.T) {
	o := NewWireGuardOptions()
	o.IP = "10.10.10"
	o.EndpointIP = "203.0.113.1"
	o.Junk = "4 50 10 20 30 40"

	if errs := o.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() errs = %v, want none", errs)
	}
	if o.JunkS1 != 4 || o.JunkS2 != 50 || o.JunkH1 != 10 || o.JunkH2 != 20 || o.JunkH3 != 30 || o.JunkH4 != 40 {
		t.Errorf("junk fields parsed as %+v, want S1=4 S2=50 H1=10 H2=20 H3=30 H4=40", o)
	}
}

func TestWireGuardOptionsValidateJunkWrongFieldCount(t *testing.T) {
	o := NewWireGuardOptions()
	o.IP = "10.10.10"
	o.EndpointIP = "203.0.113.1"
	o.Junk = "4 50 10"

	errs := o.Validate()
	if len(errs) == 0 {
		t.Fatal("Validate() errs = empty, want an error for a short junk literal")
	}
}

func TestWireGuardOptionsSubnet(t *testing.T) {
	o := NewWireGuardOptions()
	o.IP = "10.10.10"
	o.IPMask = 24

	if got, want := o.Subnet(), "10.10.10.0/24"; got != want {
		t.Errorf("Subnet() = %q, want %q", got, want)
	}
}

func TestWireGuardOptionsValidateMissingRequired(t *testing.T) {
	o := &WireGuardOptions{}
	errs := o.Validate()
	if len(errs) == 0 {
		t.Fatal("Validate() errs = empty, want errors for an empty options struct")
	}
}
