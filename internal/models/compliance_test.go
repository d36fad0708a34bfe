package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsistentSanctionsStatus(t *testing.T) {
	tests := []struct {
		name             string
		sanctionsCleared bool
		accountStatus    string
		want             bool
	}{
		{"cleared active", true, AccountStatusActive, true},
		{"cleared restricted", true, AccountStatusRestricted, true},
		{"cleared closed", true, AccountStatusClosed, true},
		{"not cleared active", false, AccountStatusActive, false},
		{"not cleared restricted", false, AccountStatusRestricted, true},
		{"not cleared closed", false, AccountStatusClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConsistentSanctionsStatus(tt.sanctionsCleared, tt.accountStatus))
		})
	}
}

func TestKYCLevelAtLeast(t *testing.T) {
	assert.True(t, KYCLevelAtLeast(KYCLevelEnhanced, KYCLevelBasic))
	assert.True(t, KYCLevelAtLeast(KYCLevelBasic, KYCLevelBasic))
	assert.False(t, KYCLevelAtLeast(KYCLevelNone, KYCLevelBasic))
	assert.False(t, KYCLevelAtLeast("bogus", KYCLevelBasic))
}
