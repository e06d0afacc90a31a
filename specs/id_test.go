package specs

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pubky-garden/pubky-playground/crock32"
)

func fixedClock(micros int64) func() time.Time {
	return func() time.Time { return time.UnixMicro(micros).UTC() }
}

func TestTimestampIDWidth(t *testing.T) {
	gen := NewTimestampGenerator(fixedClock(1627849723000000))
	id := gen.NextID()
	if len(id) != TimestampIDLength {
		t.Fatalf("expected %d-char id, got %q", TimestampIDLength, id)
	}
	if err := CheckTimestampID(id); err != nil {
		t.Fatalf("generated id failed its own check: %v", err)
	}
}

func TestTimestampIDOrderPreservation(t *testing.T) {
	micros := int64(1627849723000000)
	gen := NewTimestampGenerator(func() time.Time {
		micros++
		return time.UnixMicro(micros).UTC()
	})

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.NextID()
	}

	if !sort.StringsAreSorted(ids) {
		t.Fatalf("ids derived at increasing instants must sort lexicographically")
	}
}

func TestTimestampIDSameTickAdvances(t *testing.T) {
	// A frozen clock: every derivation observes the same tick and must
	// advance by the smallest representable unit instead of reusing it.
	gen := NewTimestampGenerator(fixedClock(1627849723000000))

	a := gen.NextID()
	b := gen.NextID()
	c := gen.NextID()

	if a == b || b == c {
		t.Fatalf("same-tick derivations collided: %s %s %s", a, b, c)
	}
	if !(a < b && b < c) {
		t.Fatalf("same-tick derivations out of order: %s %s %s", a, b, c)
	}
}

func TestTimestampIDConcurrentUniqueness(t *testing.T) {
	gen := NewTimestampGenerator(fixedClock(1627849723000000))

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	results := make([][]string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]string, perWorker)
			for i := range ids {
				ids[i] = gen.NextID()
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id under concurrent derivation: %s", id)
			}
			seen[id] = struct{}{}
		}
	}
}

func TestCheckTimestampID(t *testing.T) {
	if err := CheckTimestampID("00321FCW75ZFY"); err != nil {
		t.Fatalf("expected example post id to check out: %v", err)
	}
	if err := CheckTimestampID("00321fcw75zfy"); err != nil {
		t.Fatalf("expected lowercase id to check out: %v", err)
	}
	if err := CheckTimestampID("short"); err == nil {
		t.Fatalf("expected width error")
	}
	if err := CheckTimestampID("00321FCW75ZF*"); err == nil {
		t.Fatalf("expected alphabet error")
	}
}

func TestHashIDStable(t *testing.T) {
	a := HashID("https://example.com/post/1:cool")
	b := HashID("https://example.com/post/1:cool")
	if a != b {
		t.Fatalf("hash id not deterministic: %s != %s", a, b)
	}
	if len(a) != HashIDLength {
		t.Fatalf("expected %d-char hash id, got %q", HashIDLength, a)
	}
	if _, err := crock32.DecodeExact(a, 16); err != nil {
		t.Fatalf("hash id failed to decode: %v", err)
	}

	if HashID("https://example.com/post/1:warm") == a {
		t.Fatalf("different canonical inputs must not collide")
	}
}
