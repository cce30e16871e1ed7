package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeCanSee(t *testing.T) {
	privileged := UserScope("admin")
	privileged.Privileged = true

	tests := []struct {
		name   string
		viewer Scope
		owner  Scope
		want   bool
	}{
		{name: "anyone sees global", viewer: GlobalScope(), owner: GlobalScope(), want: true},
		{name: "user sees global", viewer: UserScope("u1"), owner: GlobalScope(), want: true},
		{name: "user sees own", viewer: UserScope("u1"), owner: UserScope("u1"), want: true},
		{name: "user hidden from others", viewer: UserScope("u2"), owner: UserScope("u1"), want: false},
		{name: "global viewer hidden from user rows", viewer: GlobalScope(), owner: UserScope("u1"), want: false},
		{name: "keyed row needs matching key", viewer: UserKeyedScope("u1", "acme"), owner: UserKeyedScope("u1", "acme"), want: true},
		{name: "keyed row hidden for other key", viewer: UserKeyedScope("u1", "other"), owner: UserKeyedScope("u1", "acme"), want: false},
		{name: "unkeyed viewer cannot see keyed row", viewer: UserScope("u1"), owner: UserKeyedScope("u1", "acme"), want: false},
		{name: "keyed viewer sees own unkeyed rows", viewer: UserKeyedScope("u1", "acme"), owner: UserScope("u1"), want: true},
		{name: "privileged sees everything", viewer: privileged, owner: UserKeyedScope("u1", "acme"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.viewer.CanSee(tt.owner))
		})
	}
}

func TestScopeIsGlobal(t *testing.T) {
	assert.True(t, GlobalScope().IsGlobal())
	assert.True(t, Scope{}.IsGlobal())
	assert.False(t, UserScope("u1").IsGlobal())
	assert.False(t, UserKeyedScope("u1", "k").IsGlobal())
}
