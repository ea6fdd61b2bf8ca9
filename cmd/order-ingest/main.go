// Command order-ingest imports gzipped CSV order exports into the database.
//
// Each export file holds one row per order line:
//
//	order_id,customer_id,product_id,quantity,price,date,status
//
// Orders already present in the database are skipped. A bloom filter seeded
// with the stored order ids serves as a cheap pre-filter; positives are
// confirmed with an exact lookup before an order is dropped.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shop-analytics/internal/domain"
	"github.com/xenking/shop-analytics/internal/repository"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	dateLayout    = "2006-01-02"
)

// orderRow is one parsed CSV line of an export file.
type orderRow struct {
	orderID    int64
	customerID int64
	productID  int64
	quantity   int
	price      decimal.Decimal
	date       time.Time
	status     string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz order exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("order ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list export files")
	}
	if len(files) == 0 {
		slog.Info("no export files found", slog.String("dir", dataDir))
		return nil
	}
	sort.Strings(files)

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	customers, products, err := loadReferences(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "load reference data")
	}

	orders := repository.NewOrderRepository(pool)

	seen, err := seedSeenFilter(ctx, orders)
	if err != nil {
		return errors.Wrap(err, "seed order id filter")
	}

	ing := &ingester{
		orders:    orders,
		customers: customers,
		products:  products,
		seen:      seen,
		claimed:   make(map[int64]struct{}),
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(ing.ingestFile(ctx, f))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Int("files", len(files)),
		slog.Uint64("imported", ing.imported.Load()),
		slog.Uint64("skipped", ing.skipped.Load()),
	)

	return nil
}

// loadReferences loads customers and products once and indexes them by id.
// Export rows referencing unknown ids are rejected.
func loadReferences(ctx context.Context, pool *pgxpool.Pool) (map[int64]*domain.Customer, map[int64]*domain.Product, error) {
	cs, err := repository.NewCustomerRepository(pool).List(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list customers")
	}
	ps, err := repository.NewProductRepository(pool).List(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list products")
	}

	customers := make(map[int64]*domain.Customer, len(cs))
	for _, c := range cs {
		customers[c.ID] = c
	}
	products := make(map[int64]*domain.Product, len(ps))
	for _, p := range ps {
		products[p.ID] = p
	}

	return customers, products, nil
}

// seedSeenFilter builds a bloom filter over the order ids already stored.
// The filter is only read after seeding, so concurrent file workers may
// share it without locking.
func seedSeenFilter(ctx context.Context, orders *repository.OrderRepository) (*bloom.BloomFilter, error) {
	ids, err := orders.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	buf := make([]byte, 8)
	for _, id := range ids {
		filter.Add(strconv.AppendInt(buf[:0], id, 10))
	}

	slog.Info("seeded order id filter", slog.Int("existing_orders", len(ids)))

	return filter, nil
}

type ingester struct {
	orders    *repository.OrderRepository
	customers map[int64]*domain.Customer
	products  map[int64]*domain.Product
	seen      *bloom.BloomFilter

	mu      sync.Mutex
	claimed map[int64]struct{}

	imported atomic.Uint64
	skipped  atomic.Uint64
}

// claim reserves an order id for the current run so that the same order
// appearing in two export files is imported exactly once.
func (ing *ingester) claim(id int64) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	if _, ok := ing.claimed[id]; ok {
		return false
	}
	ing.claimed[id] = struct{}{}
	return true
}

func (ing *ingester) ingestFile(ctx context.Context, path string) func() error {
	return func() error {
		rows, err := readExportFile(ctx, path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}

		grouped, orderIDs := groupRows(rows)

		var imported, skipped int
		for _, id := range orderIDs {
			ok, err := ing.importOrder(ctx, id, grouped[id])
			if err != nil {
				return errors.Wrapf(err, "import order %d from %s", id, path)
			}
			if ok {
				imported++
			} else {
				skipped++
			}
		}

		ing.imported.Add(uint64(imported))
		ing.skipped.Add(uint64(skipped))

		slog.Info("file complete",
			slog.String("path", path),
			slog.Int("imported", imported),
			slog.Int("skipped", skipped),
		)

		return nil
	}
}

// importOrder rehydrates one order from its export rows and saves it,
// reporting whether it was imported or skipped as a duplicate.
func (ing *ingester) importOrder(ctx context.Context, id int64, rows []orderRow) (bool, error) {
	if !ing.claim(id) {
		return false, nil
	}
	if ing.seen.Test(strconv.AppendInt(make([]byte, 0, 8), id, 10)) {
		exists, err := ing.orders.Exists(ctx, id)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	first := rows[0]
	customer, ok := ing.customers[first.customerID]
	if !ok {
		return false, errors.Errorf("unknown customer %d", first.customerID)
	}

	o := domain.NewOrder(id, customer, first.date)
	o.UpdateStatus(first.status)

	for _, row := range rows {
		p, ok := ing.products[row.productID]
		if !ok {
			return false, errors.Errorf("unknown product %d", row.productID)
		}
		if err := o.RestoreItem(p, row.quantity, row.price); err != nil {
			return false, errors.Wrapf(err, "restore product %d", row.productID)
		}
	}

	if err := ing.orders.Save(ctx, o); err != nil {
		return false, err
	}

	return true, nil
}

// groupRows collects export rows per order, preserving first-seen order of ids.
func groupRows(rows []orderRow) (map[int64][]orderRow, []int64) {
	grouped := make(map[int64][]orderRow)
	var ids []int64
	for _, row := range rows {
		if _, ok := grouped[row.orderID]; !ok {
			ids = append(ids, row.orderID)
		}
		grouped[row.orderID] = append(grouped[row.orderID], row)
	}
	return grouped, ids
}

// readExportFile streams a gzipped CSV export and parses every line.
func readExportFile(ctx context.Context, path string) ([]orderRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = 7
	r.ReuseRecord = true

	var rows []orderRow
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string) (orderRow, error) {
	orderID, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "order_id")
	}
	customerID, err := strconv.ParseInt(record[1], 10, 64)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "customer_id")
	}
	productID, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return orderRow{}, errors.Wrap(err, "product_id")
	}
	quantity, err := strconv.Atoi(record[3])
	if err != nil {
		return orderRow{}, errors.Wrap(err, "quantity")
	}
	price, err := decimal.NewFromString(record[4])
	if err != nil {
		return orderRow{}, errors.Wrap(err, "price")
	}
	date, err := time.Parse(dateLayout, record[5])
	if err != nil {
		return orderRow{}, errors.Wrap(err, "date")
	}

	status := record[6]
	if status == "" {
		status = domain.StatusNew
	}

	return orderRow{
		orderID:    orderID,
		customerID: customerID,
		productID:  productID,
		quantity:   quantity,
		price:      price,
		date:       date,
		status:     status,
	}, nil
}
