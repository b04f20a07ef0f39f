// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"strings"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

var (
	studentKeywords     = []string{"student", "mahasiswa", "undergraduate", "postgraduate", "phd candidate"}
	lecturerKeywords    = []string{"lecturer", "dosen", "professor", "researcher", "faculty", "staff"}
	studentEmailMarkers = []string{"student", "mahasiswa"}
)

// DeriveRole classifies a profile owner from keyword membership. Student
// markers win over lecturer markers. Matching is case-insensitive.
func DeriveRole(affiliation, email string) types.Role {
	aff := strings.ToLower(affiliation)
	mail := strings.ToLower(email)

	if containsAny(mail, studentEmailMarkers) || containsAny(aff, studentKeywords) {
		return types.RoleStudent
	}
	local, _, found := strings.Cut(mail, "@")
	if !found {
		local = ""
	}
	if containsAny(aff, lecturerKeywords) || containsAny(local, lecturerKeywords) {
		return types.RoleLecturer
	}
	return types.RoleUnknown
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
