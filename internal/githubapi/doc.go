// Package githubapi talks to the GitHub REST API through go-github.
//
// Client authenticates with an oauth2 static token when one is configured and
// maps failures into APIError (the server answered with a non-2xx status) or
// OperationError (the request never completed).
package githubapi
