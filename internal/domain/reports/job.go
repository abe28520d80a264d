package reports

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	inputFilenamePattern = regexp.MustCompile(`^json_\d{12}_[0-9a-f]{8}\.json$`)
	respFilenamePattern  = regexp.MustCompile(`^resp_\d{12}_[0-9a-f]{8}\.html$`)
)

// Validate rejects payloads the worker must not act on: missing fields,
// filenames that were not produced by NewArtifactNames, and keys that do not
// end with those filenames.
func (j Job) Validate() error {
	if strings.TrimSpace(j.BucketName) == "" {
		return fmt.Errorf("%w: bucket_name is required", ErrInvalidJob)
	}
	if !inputFilenamePattern.MatchString(j.InputFilename) {
		return fmt.Errorf("%w: bad input_filename %q", ErrInvalidJob, j.InputFilename)
	}
	if !respFilenamePattern.MatchString(j.RespFilename) {
		return fmt.Errorf("%w: bad resp_filename %q", ErrInvalidJob, j.RespFilename)
	}
	if path.Base(j.JSONKey) != j.InputFilename || strings.Contains(j.JSONKey, "..") {
		return fmt.Errorf("%w: json_key %q does not name %s", ErrInvalidJob, j.JSONKey, j.InputFilename)
	}
	if path.Base(j.HTMLKey) != j.RespFilename || strings.Contains(j.HTMLKey, "..") {
		return fmt.Errorf("%w: html_key %q does not name %s", ErrInvalidJob, j.HTMLKey, j.RespFilename)
	}
	if strings.TrimPrefix(j.InputFilename, "json_")[:21] != strings.TrimPrefix(j.RespFilename, "resp_")[:21] {
		return fmt.Errorf("%w: input and response names belong to different requests", ErrInvalidJob)
	}
	return nil
}
