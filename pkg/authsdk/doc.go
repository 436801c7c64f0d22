// Package authsdk is the client SDK for the Grocery Price Checker REST API.
//
// It owns the client side of the session: the TokenStore holding the access
// and refresh credentials, the Bus announcing every change to them, the
// unverified SessionPayload decoder used for display, and Fetch, the single
// chokepoint that attaches the bearer credential and translates every HTTP
// failure into one of four error kinds:
//
//   - *NetworkError: no response was received.
//   - *SessionExpiredError: the backend reported the access credential as
//     expired. Tokens are cleared and the Navigator is sent to the login page
//     before the error is returned.
//   - *APIError: any other non-2xx response, with a flattened message.
//   - context errors, when the caller's context ends first (wrapped in
//     *NetworkError).
//
// Typical usage:
//
//	bus := authsdk.NewBus(logger)
//	tokens := authsdk.NewTokenStore(store, bus, logger)
//	client := authsdk.NewSDKClient("http://localhost:8000", tokens)
//	client.Navigator = shell
//
//	if err := client.Login(ctx, "alice", "secret"); err != nil {
//		var apiErr *authsdk.APIError
//		if errors.As(err, &apiErr) {
//			fmt.Println(apiErr.Message)
//		}
//	}
//
//	result, err := client.LookupBarcode(ctx, "0064200116473")
//
// The refresh credential is stored but never exchanged. An expired access
// credential always forces a new login.
package authsdk
