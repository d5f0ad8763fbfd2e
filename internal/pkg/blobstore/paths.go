package blobstore

import (
	"fmt"
	"strings"
	"time"
)

// fallbackExtension stands in for extensions that are not plain letters and
// digits
const fallbackExtension = "bin"

// Extension returns the text after the last dot of name, or name itself when
// it has no dot. Anything empty or outside [A-Za-z0-9] becomes
// fallbackExtension so object paths stay URL safe.
func Extension(name string) string {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}
	if ext == "" {
		return fallbackExtension
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fallbackExtension
		}
	}
	return ext
}

// MaterialPath is {branch}/{semester}/{subject}/{module}/{unixMillis}.{ext}
func MaterialPath(branch string, semester int, subjectID, moduleID, fileName string, at time.Time) string {
	return fmt.Sprintf("%s/%d/%s/%s/%d.%s", branch, semester, subjectID, moduleID, at.UnixMilli(), Extension(fileName))
}

// ReferencePath is {branch}/{semester}/{subject}/{unixMillis}.{ext}
func ReferencePath(branch string, semester int, subjectID, fileName string, at time.Time) string {
	return fmt.Sprintf("%s/%d/%s/%d.%s", branch, semester, subjectID, at.UnixMilli(), Extension(fileName))
}
