// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"admin", RoleAdmin},
		{"user", RoleUser},
		{"", RoleUser},
		{"Admin", RoleUser},
		{"ADMIN", RoleUser},
		{" admin", RoleUser},
		{"admin ", RoleUser},
		{"administrator", RoleUser},
		{"editor", RoleUser},
		{"root", RoleUser},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRole(tt.input), "input %q", tt.input)
	}
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleUser.IsAdmin())
	assert.False(t, Role("Admin").IsAdmin())
	assert.False(t, Role("").IsAdmin())
}
