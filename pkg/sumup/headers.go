package sumup

import "github.com/google/uuid"

// Version of the SDK reported in the User-Agent header
const Version = "0.1.0"

// StandardHeaders returns the headers sent with every request.
// Each call carries a fresh X-Request-Id.
func StandardHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "sumup-go-sdk/" + Version,
		"X-Request-Id": uuid.NewString(),
	}
}

func mergeHeaders(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}
