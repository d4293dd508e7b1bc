package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// ChallengeCodeParam is the query parameter of the endpoint validation request.
const ChallengeCodeParam = "challenge_code"

// ChallengeResponse computes hex(SHA-256(code || token || endpoint)), the
// answer the provider expects when it validates a notification endpoint.
// endpoint must be byte-identical to the URL registered with the provider.
func ChallengeResponse(code, token, endpoint string) string {
	h := sha256.New()
	h.Write([]byte(code))
	h.Write([]byte(token))
	h.Write([]byte(endpoint))
	return hex.EncodeToString(h.Sum(nil))
}

// ChallengeHandler answers endpoint validation GETs:
//
//	GET /webhook?challenge_code=123
//	200 {"challengeResponse":"<hex>"}
func ChallengeHandler(token, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get(ChallengeCodeParam)
		if code == "" {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			ChallengeResponse string `json:"challengeResponse"`
		}{ChallengeResponse(code, token, endpoint)})
	}
}
