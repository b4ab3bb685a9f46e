package routes

import "errors"

// errHandled signals that a transaction callback already wrote the HTTP
// response; it rolls the transaction back without a second reply.
var errHandled = errors.New("response already written")
