package authz

import (
	_ "embed"

	casbin "github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

//go:embed model.conf
var modelConf []byte

//go:embed policy.csv
var policyCSV []byte

// Enforcer wraps a casbin enforcer preloaded with the admin-route policy.
// Unlike the teacher's package-level singleton, each caller constructs its
// own via NewEnforcer — Boot owns the instance the admin HTTP surface uses.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer loads the embedded model/policy pair. The policy is static
// and read-only: there is no AddPolicy call path, matching the fixed
// admin-vs-guest shape of §2a's route set.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(string(modelConf))
	if err != nil {
		return nil, err
	}
	adapter, err := newCSVAdapter(policyCSV)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	return &Enforcer{e: e}, nil
}

// Enforce checks whether sub (SubjectAdmin or SubjectGuest) may perform act
// on the route obj.
func (en *Enforcer) Enforce(sub, obj, act string) (bool, error) {
	return en.e.Enforce(sub, obj, act)
}
