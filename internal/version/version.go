package version

import "fmt"

type Version struct {
	MajorNumber int64
	MinorNumber int64
	PatchNumber int64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.MajorNumber, v.MinorNumber, v.PatchNumber)
}

// UserAgent identifies the server in outgoing http requests.
func (v Version) UserAgent() string {
	return "vekimatrix/" + v.String()
}

var AppVersion = Version{
	MajorNumber: 1,
	MinorNumber: 0,
	PatchNumber: 0,
}
