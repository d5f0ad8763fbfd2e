package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_BranchCaseIsLeftToService(t *testing.T) {
	var req RegisterRequest
	body := []byte(`{"name":"Asha","email":"asha@nhance.edu","password":"secret1","branch":"cse"}`)
	require.NoError(t, binding.JSON.BindBody(body, &req))
	assert.Equal(t, "cse", req.Branch)

	err := binding.JSON.BindBody([]byte(`{"name":"Asha","email":"asha@nhance.edu","password":"secret1"}`), &RegisterRequest{})
	require.Error(t, err)
	detail := HandleValidationError(err)
	assert.Equal(t, "Branch", detail.Field)
	assert.Equal(t, ErrorSeverityError, detail.Severity)
}
