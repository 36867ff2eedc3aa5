package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/malusev998/currency-rates/handler"
)

func main() {
	h := handler.New()

	// The event payload is ignored; every invocation reads its configuration from
	// the function environment.
	lambda.Start(func(ctx context.Context) (handler.Response, error) {
		return h.Handle(ctx, handler.NewViper()), nil
	})
}
