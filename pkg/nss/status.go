// Package nss implements the hosts-database lookup protocol: the
// three-call enumeration convention, the by-name and by-address lookup
// operations, and the status codes they return across the foreign
// boundary.
package nss

// Status is the outcome code returned to the foreign caller. The
// numeric values are part of the boundary contract.
type Status int32

const (
	StatusTryAgain Status = -2
	StatusUnavail  Status = -1
	StatusNotFound Status = 0
	StatusSuccess  Status = 1
	// StatusReturn short-circuits the calling protocol; it is produced
	// when a name lookup names an address family this module cannot
	// translate.
	StatusReturn Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusTryAgain:
		return "tryagain"
	case StatusUnavail:
		return "unavail"
	case StatusNotFound:
		return "notfound"
	case StatusSuccess:
		return "success"
	case StatusReturn:
		return "return"
	default:
		return "invalid"
	}
}
