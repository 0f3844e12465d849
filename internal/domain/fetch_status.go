package domain

// FetchState is the phase of background image retrieval
type FetchState string

const (
	// FetchIdle means no retrieval is in flight
	FetchIdle FetchState = "idle"
	// FetchFetching means bytes for the current url background are being retrieved
	FetchFetching FetchState = "fetching"
	// FetchFailed means the last retrieval for URL failed to fetch or decode
	FetchFailed FetchState = "failed"
)

// FetchStatus is the observable state of background image retrieval
type FetchStatus struct {
	State FetchState
	// URL is set only in the failed state
	URL string
}

// Idle returns the idle status
func Idle() FetchStatus {
	return FetchStatus{State: FetchIdle}
}

// Fetching returns the fetching status
func Fetching() FetchStatus {
	return FetchStatus{State: FetchFetching}
}

// Failed returns the failed status for the given url
func Failed(rawURL string) FetchStatus {
	return FetchStatus{State: FetchFailed, URL: rawURL}
}

func (s FetchStatus) String() string {
	if s.State == FetchFailed {
		return "failed(" + s.URL + ")"
	}
	if s.State == "" {
		return string(FetchIdle)
	}
	return string(s.State)
}
