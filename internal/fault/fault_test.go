package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindNotCreator, http.StatusForbidden},
		{KindNotABacker, http.StatusForbidden},
		{KindUnauthorizedOracle, http.StatusForbidden},
		{KindUnauthorized, http.StatusForbidden},
		{KindIllegalTransition, http.StatusConflict},
		{KindWrongState, http.StatusConflict},
		{KindAlreadyVoted, http.StatusConflict},
		{KindAlreadyReleased, http.StatusConflict},
		{KindNotApproved, http.StatusConflict},
		{KindMilestoneNotVotable, http.StatusConflict},
		{KindInsufficientEscrow, http.StatusConflict},
		{KindGatewayError, http.StatusBadGateway},
		{KindGatewayTimeout, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := HTTPStatus(New(tt.kind, "x")); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}

	if got := HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("plain error mapped to %d, want 500", got)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(New(KindGatewayTimeout, "slow")) {
		t.Error("gateway timeout should be retryable")
	}
	if !Retryable(New(KindGatewayError, "boom")) {
		t.Error("gateway error should be retryable")
	}
	if Retryable(New(KindAlreadyReleased, "done")) {
		t.Error("already released is final, not retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("plain error is not retryable")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindAlreadyVoted, "voter %s", "GALICE")
	wrapped := fmt.Errorf("casting vote: %w", inner)

	if KindOf(wrapped) != KindAlreadyVoted {
		t.Errorf("KindOf through fmt wrap = %s", KindOf(wrapped))
	}
	if !Is(wrapped, KindAlreadyVoted) {
		t.Error("Is failed through wrapping")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindGatewayError, cause, "calling %s", "release_funds")

	if !errors.Is(err, cause) {
		t.Error("cause lost through Wrap")
	}
	if KindOf(err) != KindGatewayError {
		t.Errorf("kind = %s", KindOf(err))
	}
}
