package interfaces

// -----------------------------------------------------------------------------
// INetworkManager abstracts retrying HTTP access to the gateway bridge.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a GET request and returns the response body.
	Get(url string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Post performs a POST request with a JSON body.
	Post(url string, body []byte) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Delete performs a DELETE request.
	Delete(url string) error
}
