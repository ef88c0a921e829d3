package subsonic

const (
	// apiVersion is the Subsonic REST API version the client speaks.
	apiVersion = "1.16.1"

	// clientName identifies this application to the server, as required by the protocol.
	clientName = "fonoteka"

	// statusOK is the status value a successful subsonic-response carries.
	statusOK = "ok"
)
