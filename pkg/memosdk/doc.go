/*
Package memosdk is a client for the memo account service, and the home of
its wire types.

# SDKClient vs Session

SDKClient covers the public endpoints: health probes, registration and the
two login steps. Signing in returns a Session, which carries the session
token and covers everything behind the access guard.

	client := memosdk.NewSDKClient("http://localhost:8080")

	reg, err := client.Register(ctx, memosdk.RegisterRequest{
		UserLogin: "alice",
		UserPass:  "secret1",
		FirstName: "Alice",
		LastName:  "Liddell",
	})

	// Scan reg.MFAImage into an authenticator app, then:
	session, err := client.SignIn(ctx, "alice", "secret1", code, nil)

	user, err := session.GetUser(ctx, reg.UserID)

# Errors

Non-2xx responses are returned as *APIError, which carries the status code
and the detail entries of the response body:

	var apiErr *memosdk.APIError
	if errors.As(err, &apiErr) && apiErr.HasType(memosdk.TypeAttemptsSuspended) {
		// back off
	}
*/
package memosdk
