// Package sumup provides a client for the SumUp readers API.
//
// Readers are the card terminals registered to a merchant. The Readers
// service lists, creates, updates and deletes them, and starts or terminates
// checkouts on them.
//
// # Transport and authentication
//
// Requests go through a Sender. HTTPClient is the default one and uses resty
// under the hood; tests and callers with special needs can plug in their own.
// The SDK does not obtain or refresh tokens: callers pass an AccessToken they
// got elsewhere and the SDK sends it as a bearer token.
//
//	client := sumup.NewHTTPClient(sumup.DefaultConfig())
//	readers := sumup.NewReaders(client, sumup.NewAccessToken(token, "Bearer", 3600))
//
//	resp, err := readers.CreateCheckout(ctx, "MC123", "rdr_1", sumup.CheckoutRequest{
//	    TotalAmount: sumup.Amount{Value: 1000, Currency: "EUR", MinorUnit: 2},
//	})
//
// # Error Handling
//
// The API signals different failures with a handful of status codes and body
// shapes. Classify turns a status and decoded body into either a *Response or
// one typed error, so callers branch on the type instead of on raw codes:
//
//	resp, err := readers.CreateCheckout(ctx, merchant, reader, req)
//	var readerErr *sumup.ReaderError
//	var validationErr *sumup.ValidationError
//	switch {
//	case errors.As(err, &readerErr):
//	    // readerErr.Type is ReaderNotConnected or ReaderBusy
//	case errors.As(err, &validationErr):
//	    // validationErr.Fields lists the offending fields
//	case sumup.IsAuthentication(err):
//	    // get a new token
//	}
//
// Missing required arguments are reported as *ArgumentError before anything is
// sent, and transport failures as *ConnectionError.
package sumup
