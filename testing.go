// Copyright 2020 ActiveState Software. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file

package fdexpect

import (
	"errors"
	"runtime/debug"
	"testing"
)

// TestErrorHandler reports failures to t, along with everything the Session has received so far
func TestErrorHandler(t *testing.T) ErrorHandler {
	return func(s *Session, err error) error {
		partial := ""
		var expectErr *ExpectError
		if errors.As(err, &expectErr) {
			partial = expectErr.Partial
		}
		t.Errorf("Error encountered: %s\nPartial: %s\nOutput: %s\nStack: %s", unwrapErrorMessage(err), partial, s.Output(), debug.Stack())
		return err
	}
}
