package reports

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// timestampLayout renders yymmddHHMMSS
const timestampLayout = "060102150405"

// ArtifactNames are the object names shared by both artifacts of one request.
type ArtifactNames struct {
	ID            string // <ts>_<rand>
	InputFilename string
	RespFilename  string
	JSONKey       string
	HTMLKey       string
}

// NewArtifactNames builds the request/report names for one submission. The
// random part is expected to be 8 lowercase hex characters.
func NewArtifactNames(now time.Time, random, jsonFolder, respFolder string) ArtifactNames {
	id := fmt.Sprintf("%s_%s", now.Format(timestampLayout), random)
	in := "json_" + id + ".json"
	resp := "resp_" + id + ".html"
	return ArtifactNames{
		ID:            id,
		InputFilename: in,
		RespFilename:  resp,
		JSONKey:       objectKey(jsonFolder, in),
		HTMLKey:       objectKey(respFolder, resp),
	}
}

// Job builds the worker payload for these names.
func (n ArtifactNames) Job(bucket, region string) Job {
	return Job{
		BucketName:    bucket,
		JSONKey:       n.JSONKey,
		HTMLKey:       n.HTMLKey,
		RespFilename:  n.RespFilename,
		InputFilename: n.InputFilename,
		RegionName:    region,
	}
}

// RequestID recovers the <ts>_<rand> id from the staged input filename.
func (j Job) RequestID() string {
	id := strings.TrimPrefix(path.Base(j.InputFilename), "json_")
	return strings.TrimSuffix(id, ".json")
}

func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
