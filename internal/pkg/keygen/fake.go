package keygen

import (
	"context"
	"fmt"
	"sync/atomic"
)

// FakeKeyTool is the trivial in-process test double §9 requires: it never
// shells out, producing deterministic, obviously-fake key strings so tests
// can assert on them without a real wg/awg binary installed.
type FakeKeyTool struct {
	counter atomic.Int64
}

func NewFakeKeyTool() *FakeKeyTool { return &FakeKeyTool{} }

func (f *FakeKeyTool) next(prefix string) string {
	n := f.counter.Add(1)
	return fmt.Sprintf("%s-fake-key-%04d", prefix, n)
}

func (f *FakeKeyTool) GeneratePrivateKey(_ context.Context, isAmnezia bool) (string, error) {
	return f.next(modeLabel(isAmnezia) + "-priv"), nil
}

func (f *FakeKeyTool) GeneratePresharedKey(_ context.Context, isAmnezia bool) (string, error) {
	return f.next(modeLabel(isAmnezia) + "-psk"), nil
}

func (f *FakeKeyTool) DerivePublicKey(_ context.Context, isAmnezia bool, privateKey string) (string, error) {
	return "pub-of-" + privateKey, nil
}

func modeLabel(isAmnezia bool) string {
	if isAmnezia {
		return "awg"
	}
	return "wg"
}
