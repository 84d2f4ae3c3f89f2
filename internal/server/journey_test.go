package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"league-journey/internal/domain"
)

func TestSplitRiotID(t *testing.T) {
	cases := []struct {
		raw      string
		gameName string
		tagLine  string
		wantErr  bool
	}{
		{"Faker#KR1", "Faker", "KR1", false},
		{"Faker%23KR1", "Faker", "KR1", false},
		{"Hide on bush#KR1", "Hide on bush", "KR1", false},
		{"Faker", "", "", true},
		{"#KR1", "", "", true},
		{"Faker#", "", "", true},
	}
	for _, tc := range cases {
		gameName, tagLine, err := splitRiotID(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("splitRiotID(%q) should fail", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitRiotID(%q): %v", tc.raw, err)
			continue
		}
		if gameName != tc.gameName || tagLine != tc.tagLine {
			t.Errorf("splitRiotID(%q) = %q/%q, want %q/%q", tc.raw, gameName, tagLine, tc.gameName, tc.tagLine)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{domain.ErrConstraintViolation, http.StatusUnprocessableEntity},
		{domain.ErrAmbiguousOwner, http.StatusUnprocessableEntity},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
