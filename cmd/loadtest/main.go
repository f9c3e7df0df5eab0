// Команда loadtest нагружает KitchenService по gRPC и печатает сводку latency.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcsvc "github.com/alejoevilches/laabuelachela/internal/service/grpc"
)

type loadMode string

const (
	// modeCreate создаёт pending-заказы.
	modeCreate loadMode = "create"
	// modeCreateComplete создаёт заказ и сразу переводит его в completed.
	modeCreateComplete loadMode = "create-complete"
	// modeRead читает партицию и недельную сводку; нагружает кэш, а не хранилище.
	modeRead loadMode = "read"
)

type config struct {
	addr        string
	total       int
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	productID   int64
	quantity    int
	amount      string
	clientTag   string
	outputPath  string
}

// kitchenClient содержит методы KitchenServiceClient, которые использует нагрузка.
type kitchenClient interface {
	ListProducts(ctx context.Context, in *grpcsvc.ListProductsRequest, opts ...grpc.CallOption) (*grpcsvc.ListProductsResponse, error)
	CreateOrder(ctx context.Context, in *grpcsvc.CreateOrderRequest, opts ...grpc.CallOption) (*grpcsvc.OrderResponse, error)
	SetOrderStatus(ctx context.Context, in *grpcsvc.SetOrderStatusRequest, opts ...grpc.CallOption) (*grpcsvc.SetOrderStatusResponse, error)
	ListOrders(ctx context.Context, in *grpcsvc.ListOrdersRequest, opts ...grpc.CallOption) (*grpcsvc.ListOrdersResponse, error)
	GetWeeklySummary(ctx context.Context, in *grpcsvc.GetWeeklySummaryRequest, opts ...grpc.CallOption) (*grpcsvc.GetWeeklySummaryResponse, error)
}

func parseConfig(args []string) (config, error) {
	var cfg config
	var modeValue, timeoutValue string

	flags := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.addr, "addr", "localhost:50051", "gRPC target address")
	flags.IntVar(&cfg.total, "total", 400, "total scenarios to execute")
	flags.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flags.IntVar(&cfg.connections, "connections", 4, "number of gRPC client connections")
	flags.StringVar(&timeoutValue, "timeout", "5s", "per-RPC timeout")
	flags.StringVar(&modeValue, "mode", string(modeCreate), "load mode: create | create-complete | read")
	flags.Int64Var(&cfg.productID, "product-id", 0, "product for order items (0 = first active product)")
	flags.IntVar(&cfg.quantity, "qty", 1, "quantity per order item")
	flags.StringVar(&cfg.amount, "amount", "10.00", "order amount")
	flags.StringVar(&cfg.clientTag, "client-tag", "load", "client name prefix")
	flags.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	if cfg.mode, err = parseMode(modeValue); err != nil {
		return cfg, err
	}

	switch {
	case cfg.total <= 0:
		return cfg, errors.New("total must be > 0")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.connections <= 0:
		return cfg, errors.New("connections must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.quantity <= 0:
		return cfg, errors.New("qty must be > 0")
	case cfg.productID < 0:
		return cfg, errors.New("product-id must be >= 0")
	case strings.TrimSpace(cfg.clientTag) == "":
		return cfg, errors.New("client-tag is required")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch mode := loadMode(strings.TrimSpace(value)); mode {
	case modeCreate, modeCreateComplete, modeRead:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	conns := make([]*grpc.ClientConn, 0, cfg.connections)
	clients := make([]kitchenClient, 0, cfg.connections)
	for i := 0; i < cfg.connections; i++ {
		conn, dialErr := grpc.NewClient(cfg.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if dialErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to create grpc client connection: %v\n", dialErr)
			os.Exit(1)
		}
		conns = append(conns, conn)
		clients = append(clients, grpcsvc.NewKitchenServiceClient(conn))
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	result, err := runLoad(context.Background(), clients, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load test aborted: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

// runLoad распределяет сценарии по воркерам и собирает отчёт.
// Ошибки сценариев попадают в отчёт, runLoad падает только если нельзя выбрать продукт.
func runLoad(ctx context.Context, clients []kitchenClient, cfg config) (report, error) {
	if cfg.mode != modeRead && cfg.productID == 0 {
		productID, err := pickProduct(ctx, clients[0], cfg.timeout)
		if err != nil {
			return report{}, err
		}
		cfg.productID = productID
	}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var g errgroup.Group
	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		client := clients[workerID%len(clients)]
		g.Go(func() error {
			for id := range jobs {
				_ = runScenario(ctx, client, cfg, id, runID, col)
			}
			return nil
		})
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	_ = g.Wait()

	return col.buildReport(startedAt, time.Since(startedAt)), nil
}

func pickProduct(ctx context.Context, client kitchenClient, timeout time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := client.ListProducts(ctx, &grpcsvc.ListProductsRequest{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(resp.Products) == 0 {
		return 0, errors.New("catalog has no active products, pass -product-id")
	}
	return resp.Products[0].ID, nil
}

func runScenario(ctx context.Context, client kitchenClient, cfg config, index int, runID string, col *collector) (err error) {
	scenarioStart := time.Now()
	defer func() {
		col.record(scenarioMethod, time.Since(scenarioStart), grpcCode(err))
	}()

	if cfg.mode == modeRead {
		if _, err = call(ctx, col, "ListOrders", cfg.timeout, func(ctx context.Context) (*grpcsvc.ListOrdersResponse, error) {
			return client.ListOrders(ctx, &grpcsvc.ListOrdersRequest{Status: "pending"})
		}); err != nil {
			return err
		}
		_, err = call(ctx, col, "GetWeeklySummary", cfg.timeout, func(ctx context.Context) (*grpcsvc.GetWeeklySummaryResponse, error) {
			return client.GetWeeklySummary(ctx, &grpcsvc.GetWeeklySummaryRequest{})
		})
		return err
	}

	created, err := call(ctx, col, "CreateOrder", cfg.timeout, func(ctx context.Context) (*grpcsvc.OrderResponse, error) {
		return client.CreateOrder(ctx, &grpcsvc.CreateOrderRequest{Order: grpcsvc.OrderInput{
			Client: fmt.Sprintf("%s-%s-%d", cfg.clientTag, runID, index),
			Amount: cfg.amount,
			Items:  []grpcsvc.LineItem{{ProductID: cfg.productID, Quantity: int32(cfg.quantity)}},
		}})
	})
	if err != nil {
		return err
	}
	if created.Order.ID == 0 {
		return status.Error(codes.Internal, "create response returned empty order id")
	}

	if cfg.mode == modeCreateComplete {
		_, err = call(ctx, col, "SetOrderStatus", cfg.timeout, func(ctx context.Context) (*grpcsvc.SetOrderStatusResponse, error) {
			return client.SetOrderStatus(ctx, &grpcsvc.SetOrderStatusRequest{ID: created.Order.ID, Status: "completed"})
		})
	}
	return err
}

// call выполняет один RPC с таймаутом и записывает его latency.
func call[Resp any](ctx context.Context, col *collector, method string, timeout time.Duration, fn func(context.Context) (*Resp, error)) (*Resp, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := fn(ctx)
	col.record(method, time.Since(start), grpcCode(err))
	return resp, err
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}
