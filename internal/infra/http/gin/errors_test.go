package ginserver

import (
	"errors"
	"net/http"
	"testing"

	"stayinn/internal/domain/shared/fault"
)

func TestStatusForFault(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fault.New(fault.Unauthenticated, "no token"), http.StatusUnauthorized},
		{fault.New(fault.Forbidden, "wrong role"), http.StatusForbidden},
		{fault.New(fault.InvalidInput, "bad payload"), http.StatusBadRequest},
		{fault.New(fault.NotFound, "missing"), http.StatusNotFound},
		{fault.New(fault.Conflict, "overlap"), http.StatusConflict},
		{fault.New(fault.Busy, "version clash"), http.StatusConflict},
		{fault.New(fault.Timeout, "deadline"), http.StatusGatewayTimeout},
		{fault.New(fault.Unavailable, "store down"), http.StatusServiceUnavailable},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForFault(tc.err); got != tc.want {
			t.Fatalf("statusForFault(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusForFaultKeepsKindThroughWrapping(t *testing.T) {
	inner := fault.New(fault.Conflict, "dates already booked")
	wrapped := fault.Wrap(fault.Conflict, "reservation refused", inner)
	if got := statusForFault(wrapped); got != http.StatusConflict {
		t.Fatalf("wrapped fault = %d, want %d", got, http.StatusConflict)
	}
}
