package authz

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
)

// csvAdapter loads a fixed, in-memory policy; it never persists writes
// (there are none — the admin/guest policy is static).
type csvAdapter struct {
	lines []string
}

func newCSVAdapter(data []byte) (*csvAdapter, error) {
	a := &csvAdapter{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a.lines = append(a.lines, line)
	}
	return a, scanner.Err()
}

func (a *csvAdapter) LoadPolicy(m model.Model) error {
	for _, line := range a.lines {
		persist.LoadPolicyLine(line, m)
	}
	return nil
}

func (a *csvAdapter) SavePolicy(m model.Model) error { return nil }

func (a *csvAdapter) AddPolicy(sec, ptype string, rule []string) error { return nil }

func (a *csvAdapter) RemovePolicy(sec, ptype string, rule []string) error { return nil }

func (a *csvAdapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return nil
}
