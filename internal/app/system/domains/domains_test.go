package domains

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

type fakeDNS map[string]string

func (f fakeDNS) LookupCNAME(_ context.Context, host string) (string, error) {
	if c, ok := f[host]; ok {
		return c, nil
	}
	return "", errors.New("no such host")
}

type fakeRegistrar struct {
	added, removed []string
	failAdd        bool
}

func (r *fakeRegistrar) Add(_ context.Context, host string) error {
	if r.failAdd {
		return errors.New("provider down")
	}
	r.added = append(r.added, host)
	return nil
}

func (r *fakeRegistrar) Remove(_ context.Context, host string) error {
	r.removed = append(r.removed, host)
	return nil
}

type fakeDir struct {
	munis  map[string]models.Municipality
	setErr error
}

var errNoMuni = errors.New("municipality not found")

func (d *fakeDir) GetByID(_ context.Context, id string) (models.Municipality, error) {
	m, ok := d.munis[id]
	if !ok {
		return models.Municipality{}, errNoMuni
	}
	return m, nil
}

func (d *fakeDir) SetCustomDomain(_ context.Context, id, host string, at time.Time) (models.Municipality, error) {
	if d.setErr != nil {
		return models.Municipality{}, d.setErr
	}
	m := d.munis[id]
	m.Website = models.WebsiteSettings{CustomDomain: host, DomainVerified: true, VerifiedAt: &at}
	d.munis[id] = m
	return m, nil
}

func (d *fakeDir) ClearCustomDomain(_ context.Context, id string) (models.Municipality, error) {
	m := d.munis[id]
	m.Website = models.WebsiteSettings{}
	d.munis[id] = m
	return m, nil
}

type fakeCache struct{ invalidated []string }

func (c *fakeCache) Invalidate(_ context.Context, host string) {
	c.invalidated = append(c.invalidated, host)
}

func newTestService(dns fakeDNS) (*Service, *fakeDir, *fakeRegistrar, *fakeCache) {
	dir := &fakeDir{munis: map[string]models.Municipality{
		"saint-lazare": {ID: "saint-lazare", Active: true},
	}}
	reg := &fakeRegistrar{}
	cache := &fakeCache{}
	return New(dir, reg, dns, cache, "sites.civickey.ca", "civickey.ca", zap.NewNop()), dir, reg, cache
}

func TestCheck(t *testing.T) {
	s, _, _, _ := newTestService(nil)
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"WWW.Saint-Lazare.ca.", "www.saint-lazare.ca", nil},
		{"www.saint-lazare.ca:443", "www.saint-lazare.ca", nil},
		{"localhost", "", ErrInvalidDomain},
		{"bad_name.ca", "", ErrInvalidDomain},
		{"civickey.ca", "", ErrPlatformDomain},
		{"hudson.civickey.ca", "", ErrPlatformDomain},
	}
	for _, tt := range tests {
		got, err := s.Check(tt.in)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("Check(%q) = %q, %v; want %q, %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestAdd_RequiresCNAME(t *testing.T) {
	s, dir, reg, _ := newTestService(fakeDNS{"www.saint-lazare.ca": "elsewhere.example.com."})

	if _, err := s.Add(context.Background(), "saint-lazare", "www.saint-lazare.ca"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("err = %v, want ErrNotVerified", err)
	}
	if len(reg.added) != 0 || dir.munis["saint-lazare"].HasCustomDomain() {
		t.Error("unverified domain was registered")
	}
}

func TestAdd_ReplacesPreviousDomain(t *testing.T) {
	s, _, reg, cache := newTestService(fakeDNS{
		"www.saint-lazare.ca":   "sites.civickey.ca.",
		"ville.saint-lazare.ca": "SITES.civickey.ca.",
	})
	ctx := context.Background()

	if _, err := s.Add(ctx, "saint-lazare", "www.saint-lazare.ca"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m, err := s.Add(ctx, "saint-lazare", "ville.saint-lazare.ca")
	if err != nil {
		t.Fatalf("Add replacement: %v", err)
	}
	if m.Website.CustomDomain != "ville.saint-lazare.ca" || !m.Website.DomainVerified {
		t.Errorf("website = %+v", m.Website)
	}
	if len(reg.removed) != 1 || reg.removed[0] != "www.saint-lazare.ca" {
		t.Errorf("removed = %v", reg.removed)
	}
	want := []string{"www.saint-lazare.ca", "ville.saint-lazare.ca", "www.saint-lazare.ca"}
	if len(cache.invalidated) != len(want) {
		t.Fatalf("invalidated = %v, want %v", cache.invalidated, want)
	}
	for i := range want {
		if cache.invalidated[i] != want[i] {
			t.Errorf("invalidated = %v, want %v", cache.invalidated, want)
			break
		}
	}
}

func TestAdd_RollsBackWhenDirectoryRejects(t *testing.T) {
	s, dir, reg, cache := newTestService(fakeDNS{"www.saint-lazare.ca": "sites.civickey.ca"})
	inUse := errors.New("in use")
	dir.setErr = inUse

	if _, err := s.Add(context.Background(), "saint-lazare", "www.saint-lazare.ca"); !errors.Is(err, inUse) {
		t.Fatalf("err = %v", err)
	}
	if len(reg.removed) != 1 || reg.removed[0] != "www.saint-lazare.ca" {
		t.Errorf("registration not rolled back: %v", reg.removed)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("cache touched on failure: %v", cache.invalidated)
	}
}

func TestRemove(t *testing.T) {
	s, dir, reg, cache := newTestService(nil)
	ctx := context.Background()

	if _, err := s.Remove(ctx, "saint-lazare"); err != nil {
		t.Fatalf("Remove without domain: %v", err)
	}
	if len(reg.removed) != 0 {
		t.Errorf("registrar called without domain")
	}

	m := dir.munis["saint-lazare"]
	m.Website.CustomDomain = "www.saint-lazare.ca"
	dir.munis["saint-lazare"] = m

	got, err := s.Remove(ctx, "saint-lazare")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got.HasCustomDomain() {
		t.Error("domain still set")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "www.saint-lazare.ca" {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
	if _, err := s.Remove(ctx, "ghost"); !errors.Is(err, errNoMuni) {
		t.Errorf("unknown municipality err = %v", err)
	}
}
