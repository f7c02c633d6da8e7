package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Drives concurrent sales against a running server and reports how the
// contention resolved. Useful for eyeballing that stock never oversells.

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	productID := flag.String("product", "prod-charger", "product to buy")
	customerID := flag.String("customer", "cust-ana", "customer id")
	sellerID := flag.String("seller", "sell-norte", "seller id")
	requests := flag.Int("n", 50, "number of concurrent purchase requests")
	quantity := flag.Int("qty", 1, "quantity per request")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var success, soldOut, failed atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"order_id":      uuid.NewString(),
				"order_item_id": uuid.NewString(),
				"customer_id":   *customerID,
				"seller_id":     *sellerID,
				"product_id":    *productID,
				"quantity":      *quantity,
			})
			resp, err := client.Post(*addr+"/api/sales", "application/json", bytes.NewReader(body))
			if err != nil {
				failed.Add(1)
				return
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				success.Add(1)
			case http.StatusUnprocessableEntity:
				soldOut.Add(1)
			default:
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("sent %d requests in %v", *requests, elapsed)
	fmt.Printf("recorded:  %d\n", success.Load())
	fmt.Printf("sold out:  %d\n", soldOut.Load())
	fmt.Printf("failed:    %d\n", failed.Load())
}
