// main_test.go
package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashoksingh1988/Techacademy-Final-Assessment/cmd"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: 1 of 4", cmd.ErrCasesFailed)))
	assert.Equal(t, 130, exitCode(fmt.Errorf("run interrupted: %w", context.Canceled)))
	assert.Equal(t, 2, exitCode(errors.New("failed to write reports")))
}
