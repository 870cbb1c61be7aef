package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusBadRequest, Status(Validationf("empty text")))
	req.Equal(http.StatusForbidden, Status(Permissionf("not yours")))
	req.Equal(http.StatusNotFound, Status(ErrNotFound))
	req.Equal(http.StatusInternalServerError, Status(errors.New("db down")))

	// Wrapped errors keep their mapping.
	wrapped := fmt.Errorf("repo.GetByID: %w", ErrNotFound)
	req.Equal(http.StatusNotFound, Status(wrapped))
}

func TestIsClientFault(t *testing.T) {
	req := require.New(t)

	req.True(IsClientFault(Validationf("bad")))
	req.True(IsClientFault(Permissionf("no")))
	req.True(IsClientFault(ErrNotFound))
	req.False(IsClientFault(errors.New("io timeout")))
}
