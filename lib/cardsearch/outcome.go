package cardsearch

// Outcome is the result of a single fetch, it is either a Success or a
// Failure.
type Outcome interface {
	outcome()
}

type Success struct {
	Cards []Card
}

// Failure holds one of *TransportError, *APIError, *UnknownError or
// *DecodeError, use errors.As to tell them apart.
type Failure struct {
	Err error
}

func (Success) outcome() {}
func (Failure) outcome() {}

// Message is the text shown to the user for the failure.
func (f Failure) Message() string {
	if f.Err == nil {
		return UnknownErrorMessage
	}
	return f.Err.Error()
}
