//go:build linux

// Package testutil provides namespace plumbing for the integration tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"testing"

	gont "cunicu.li/gont/v2/pkg"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netns"
)

const (
	namePrefix     = "w"        // keep first char alpha
	randNameBytes  = 4          // 4 bytes -> 8 hex chars
	fallbackHexStr = "deadbeef" // 8 chars; with prefix => 9 total
)

func randomNetnsName() string {
	buf := make([]byte, randNameBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand should not fail; fallback deterministic string.
		return namePrefix + fallbackHexStr
	}

	return namePrefix + hex.EncodeToString(buf)
}

// ScratchHost builds a throwaway gont network containing a single host with
// no interfaces. Tests run inside its namespace so link churn never touches
// the machine running the suite.
func ScratchHost(t *testing.T) *gont.Host {
	t.Helper()

	network, err := gont.NewNetwork(randomNetnsName())
	require.NoError(t, err, "create gont network")

	t.Cleanup(func() { _ = network.Close() })

	host, err := network.AddHost("scratch")
	require.NoError(t, err, "add scratch host")

	return host
}

func RequireRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() != 0 {
		require.FailNow(t, "requires root (CAP_NET_ADMIN)")
	}
}

func RequireLinux(t *testing.T) {
	t.Helper()

	if runtime.GOOS != "linux" {
		require.FailNow(t, "linux only")
	}
}

// WithNetNS pins the calling goroutine to an OS thread, enters target,
// runs work, and restores the original namespace.
func WithNetNS(target netns.NsHandle, work func() error) (retErr error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	orig, err := netns.Get()
	if err != nil {
		return fmt.Errorf("get current namespace: %w", err)
	}

	defer func() {
		if closeErr := orig.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close namespace handle: %w", closeErr)
		}
	}()

	defer func() {
		if setErr := netns.Set(orig); setErr != nil && retErr == nil {
			retErr = fmt.Errorf("restore namespace: %w", setErr)
		}
	}()

	if err := netns.Set(target); err != nil {
		return fmt.Errorf("switch namespace: %w", err)
	}

	return work()
}
