package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"foo-1.0.whl", "foo"},
		{"Foo-1.0.whl", "foo"},
		{"foo-bar-1.0.whl", "foo"},
		{"nodashname", "nodashname"},
		{"NoDashName", "nodashname"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageKey(tt.filename))
		})
	}
}

func TestPackageKeyDeterministic(t *testing.T) {
	for _, name := range []string{"foo-1.0.whl", "nodashname", "a-b-c"} {
		assert.Equal(t, PackageKey(name), PackageKey(name))
	}
}
