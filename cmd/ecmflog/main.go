// Command ecmflog floods a WiRE JSON-RPC endpoint with repeated calls of a
// single method, for smoke-testing the queue API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"golang.org/x/time/rate"

	"github.com/aviva-bulow/renishaw-ecm/internal/config"
	"github.com/aviva-bulow/renishaw-ecm/internal/logger"
	"github.com/aviva-bulow/renishaw-ecm/internal/rpc"
)

func main() {
	app := kingpin.New("ecmflog", "Test the WiRE queue JSON-RPC API.")
	url := app.Flag("url", "URL for the API endpoint.").Default(config.DefaultURL).String()
	count := app.Flag("count", "Number of requests to make.").Default("100").Int()
	method := app.Flag("method", "API method name.").Default("Queue.GetState").String()
	reqRate := app.Flag("rate", "Maximum requests per second.").Default("20").Float64()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger.Init(nil, false)

	client := rpc.NewClient(*url, 0)
	limiter := rate.NewLimiter(rate.Limit(*reqRate), 1)
	ctx := context.Background()
	for i := 0; i < *count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		result, err := client.Call(*method, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%d: error: %v\n", i, err)
			continue
		}
		fmt.Printf("%d: %v\n", i, result)
	}
}
