package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("Get() = %+v, want every field set", info)
	}
	if !strings.HasPrefix(info.Go, "go") {
		t.Errorf("Get().Go = %q, want go prefix", info.Go)
	}
	if Get() != info {
		t.Error("Get() should be stable across calls")
	}
}

func TestTemplate(t *testing.T) {
	info := Get()
	tmpl := Template()
	for _, want := range []string{"{{.Name}}", info.Version, "commit: " + info.Commit} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
}
