// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sinta

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

type fakeSource struct {
	accounts   map[string][]types.SintaAccount
	details    map[string]types.SintaDetails
	searchErr  map[string]error
	detailsErr map[string]error
	onSearch   func(name string)
	searched   []string
}

func (f *fakeSource) Search(ctx context.Context, name string) ([]types.SintaAccount, error) {
	f.searched = append(f.searched, name)
	if f.onSearch != nil {
		f.onSearch(name)
	}
	if err := f.searchErr[name]; err != nil {
		return nil, err
	}
	return f.accounts[name], nil
}

func (f *fakeSource) Details(ctx context.Context, rawURL string) (types.SintaDetails, error) {
	if err := ctx.Err(); err != nil {
		return types.SintaDetails{}, err
	}
	if err := f.detailsErr[rawURL]; err != nil {
		return types.SintaDetails{}, err
	}
	return f.details[rawURL], nil
}

var testSinta = types.SintaConfig{EmailDomains: DefaultEmailDomains, YearFrom: 2022, YearTo: 2025}

func TestVerify_RowsPerOutcome(t *testing.T) {
	src := &fakeSource{
		accounts: map[string][]types.SintaAccount{
			"Ahmad Rafiq": {
				{Query: "Ahmad Rafiq", Name: "Ahmad Rafiq", ID: "1", URL: "u1"},
				{Query: "Ahmad Rafiq", Name: "A. Rafiq", ID: "2", URL: "u2"},
			},
		},
		details: map[string]types.SintaDetails{
			"u1": {Email: "ahmad@uin-suka.ac.id", HIndex: "7", Documents: "42",
				YearlyPublications: map[int]int{2021: 9, 2022: 3, 2024: 5}},
		},
		detailsErr: map[string]error{"u2": errors.New("HTTP 500")},
		searchErr:  map[string]error{"Budi Santoso": errors.New("connection reset")},
	}
	core, logs := observer.New(zapcore.InfoLevel)
	v := NewVerifier(src, testSinta, zap.New(core))

	rows, err := v.Verify(context.Background(), []string{"Ahmad Rafiq", "Siti Aminah", "Budi Santoso"})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	found := rows[0]
	assert.Equal(t, types.VerificationFound, found.Status)
	assert.Equal(t, "1", found.Account.ID)
	assert.True(t, found.InstitutionalEmail)
	assert.Equal(t, map[int]int{2022: 3, 2023: 0, 2024: 5, 2025: 0}, found.Publications)
	assert.Equal(t, 8, found.PublicationTotal)
	assert.Empty(t, found.Error)

	noDetails := rows[1]
	assert.Equal(t, types.VerificationFound, noDetails.Status)
	assert.Equal(t, "2", noDetails.Account.ID)
	assert.Nil(t, noDetails.Details)
	assert.False(t, noDetails.InstitutionalEmail)
	assert.Contains(t, noDetails.Error, "HTTP 500")

	assert.Equal(t, types.VerificationRow{Name: "Siti Aminah", Status: types.VerificationNotFound}, rows[2])

	assert.Equal(t, types.VerificationFailed, rows[3].Status)
	assert.Equal(t, "Budi Santoso", rows[3].Name)
	assert.Contains(t, rows[3].Error, "connection reset")

	assert.Equal(t, 2, logs.FilterMessage("sinta profile unavailable").Len()+logs.FilterMessage("sinta search failed").Len())
}

func TestVerify_CancellationReturnsCompletedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{
		accounts: map[string][]types.SintaAccount{
			"Budi Santoso": {{Query: "Budi Santoso", ID: "3", URL: "u3"}},
		},
		onSearch: func(name string) {
			if name == "Budi Santoso" {
				cancel()
			}
		},
	}
	v := NewVerifier(src, testSinta, nil)

	rows, err := v.Verify(ctx, []string{"Siti Aminah", "Budi Santoso", "Dewi Lestari"})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, rows, 1)
	assert.Equal(t, "Siti Aminah", rows[0].Name)
	assert.Equal(t, []string{"Siti Aminah", "Budi Santoso"}, src.searched)
}

func TestInstitutionalEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ahmad@uin-suka.ac.id", true},
		{"Ahmad@UIN-SUKA.AC.ID", true},
		{"dosen@suka.ac.id", true},
		{"a@uin.ac.id", true},
		{"mhs@student.uin-suka.ac.id", false},
		{"a@uin-suka.ac.id.example.com", false},
		{"ahmad@gmail.com", false},
		{"uin-suka.ac.id", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, InstitutionalEmail(tt.email, DefaultEmailDomains))
		})
	}
}
