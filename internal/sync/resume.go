package sync

import (
	"fmt"
	"path/filepath"
	"strings"

	"recruitsync-engine/internal/domain"
)

// maxResumeBytes caps what gets re-uploaded to the ATS. Files at the
// limit pass; the first byte over is rejected.
const maxResumeBytes = 20 << 20

// validateResume guards the attachment upload. A rejection here skips
// the upload but never fails the candidate record.
func validateResume(r domain.Resume) error {
	if len(r.Data) > maxResumeBytes {
		return fmt.Errorf("resume %q is %d bytes, over the %d byte limit", r.FileName, len(r.Data), maxResumeBytes)
	}
	if strings.EqualFold(filepath.Ext(r.FileName), ".exe") {
		return fmt.Errorf("resume %q: executable files are not accepted", r.FileName)
	}
	return nil
}
