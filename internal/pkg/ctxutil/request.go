package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated operator for admin requests.
type RequestData struct {
	TokenString string
	OperatorID  string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
