package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// fakeStore is the in-memory backing state for the engine tests. All fake
// repositories share one store so a test can inspect everything an operation
// touched.
type fakeStore struct {
	items           map[uuid.UUID]*catalog.Item
	customers       map[uuid.UUID]*partner.Customer
	suppliers       map[uuid.UUID]*partner.Supplier
	sales           map[uuid.UUID]*trade.Sale
	purchases       map[uuid.UUID]*trade.Purchase
	customerReturns map[uuid.UUID]*trade.CustomerReturn
	supplierReturns map[uuid.UUID]*trade.SupplierReturn
	payments        map[uuid.UUID]*trade.Payment
	movements       []*inventory.StockMovement
	entries         []*partner.BalanceEntry
	events          []shared.DomainEvent

	saleSeq     int
	purchaseSeq int
	cretSeq     int
	sretSeq     int
	paymentSeq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:           make(map[uuid.UUID]*catalog.Item),
		customers:       make(map[uuid.UUID]*partner.Customer),
		suppliers:       make(map[uuid.UUID]*partner.Supplier),
		sales:           make(map[uuid.UUID]*trade.Sale),
		purchases:       make(map[uuid.UUID]*trade.Purchase),
		customerReturns: make(map[uuid.UUID]*trade.CustomerReturn),
		supplierReturns: make(map[uuid.UUID]*trade.SupplierReturn),
		payments:        make(map[uuid.UUID]*trade.Payment),
	}
}

// clone deep-copies the store far enough that restoring the clone undoes
// every mutation an operation made through the fake repositories.
func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		items:           make(map[uuid.UUID]*catalog.Item, len(s.items)),
		customers:       make(map[uuid.UUID]*partner.Customer, len(s.customers)),
		suppliers:       make(map[uuid.UUID]*partner.Supplier, len(s.suppliers)),
		sales:           make(map[uuid.UUID]*trade.Sale, len(s.sales)),
		purchases:       make(map[uuid.UUID]*trade.Purchase, len(s.purchases)),
		customerReturns: make(map[uuid.UUID]*trade.CustomerReturn, len(s.customerReturns)),
		supplierReturns: make(map[uuid.UUID]*trade.SupplierReturn, len(s.supplierReturns)),
		payments:        make(map[uuid.UUID]*trade.Payment, len(s.payments)),
		movements:       append([]*inventory.StockMovement(nil), s.movements...),
		entries:         append([]*partner.BalanceEntry(nil), s.entries...),
		events:          append([]shared.DomainEvent(nil), s.events...),
		saleSeq:         s.saleSeq,
		purchaseSeq:     s.purchaseSeq,
		cretSeq:         s.cretSeq,
		sretSeq:         s.sretSeq,
		paymentSeq:      s.paymentSeq,
	}
	for id, item := range s.items {
		copied := *item
		c.items[id] = &copied
	}
	for id, customer := range s.customers {
		copied := *customer
		c.customers[id] = &copied
	}
	for id, supplier := range s.suppliers {
		copied := *supplier
		c.suppliers[id] = &copied
	}
	for id, sale := range s.sales {
		copied := *sale
		copied.Lines = append([]trade.SaleLine(nil), sale.Lines...)
		c.sales[id] = &copied
	}
	for id, purchase := range s.purchases {
		copied := *purchase
		copied.Lines = append([]trade.PurchaseLine(nil), purchase.Lines...)
		c.purchases[id] = &copied
	}
	for id, ret := range s.customerReturns {
		copied := *ret
		c.customerReturns[id] = &copied
	}
	for id, ret := range s.supplierReturns {
		copied := *ret
		c.supplierReturns[id] = &copied
	}
	for id, payment := range s.payments {
		copied := *payment
		c.payments[id] = &copied
	}
	return c
}

// movementsFor returns the movements recorded for one item, oldest first.
func (s *fakeStore) movementsFor(itemID uuid.UUID) []*inventory.StockMovement {
	var out []*inventory.StockMovement
	for _, m := range s.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	return out
}

// entriesFor returns the balance entries recorded for one entity, oldest first.
func (s *fakeStore) entriesFor(entityID uuid.UUID) []*partner.BalanceEntry {
	var out []*partner.BalanceEntry
	for _, e := range s.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out
}

// eventTypes returns the types of all staged events, in staging order.
func (s *fakeStore) eventTypes() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType())
	}
	return out
}

// fakeScope runs operations against the fake store with rollback-on-error
// semantics, mirroring what the real transaction scope guarantees.
type fakeScope struct {
	store *fakeStore
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	snapshot := s.store.clone()
	if err := fn(s); err != nil {
		*s.store = *snapshot
		return err
	}
	return nil
}

func (s *fakeScope) ItemRepo() catalog.ItemRepository                 { return &fakeItemRepo{s.store} }
func (s *fakeScope) CustomerRepo() partner.CustomerRepository         { return &fakeCustomerRepo{s.store} }
func (s *fakeScope) SupplierRepo() partner.SupplierRepository         { return &fakeSupplierRepo{s.store} }
func (s *fakeScope) BalanceEntryRepo() partner.BalanceEntryRepository { return &fakeEntryRepo{s.store} }
func (s *fakeScope) StockMovementRepo() inventory.StockMovementRepository {
	return &fakeMovementRepo{s.store}
}
func (s *fakeScope) SaleRepo() trade.SaleRepository         { return &fakeSaleRepo{s.store} }
func (s *fakeScope) PurchaseRepo() trade.PurchaseRepository { return &fakePurchaseRepo{s.store} }
func (s *fakeScope) CustomerReturnRepo() trade.CustomerReturnRepository {
	return &fakeCRetRepo{s.store}
}
func (s *fakeScope) SupplierReturnRepo() trade.SupplierReturnRepository {
	return &fakeSRetRepo{s.store}
}
func (s *fakeScope) PaymentRepo() trade.PaymentRepository { return &fakePaymentRepo{s.store} }

func (s *fakeScope) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	s.store.events = append(s.store.events, events...)
	return nil
}

var _ TransactionScope = (*fakeScope)(nil)
var _ TransactionalRepositories = (*fakeScope)(nil)

type fakeItemRepo struct{ store *fakeStore }

func (r *fakeItemRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.store.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *fakeItemRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Item, error) {
	for _, item := range r.store.items {
		if item.TenantID == tenantID && item.Code == code {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, id := range ids {
		if item, ok := r.store.items[id]; ok && item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.store.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *catalog.Item) error {
	r.store.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) SaveWithLock(ctx context.Context, item *catalog.Item) error {
	return r.Save(ctx, item)
}

func (r *fakeItemRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, item := range r.store.items {
		if item.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type fakeCustomerRepo struct{ store *fakeStore }

func (r *fakeCustomerRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok || customer.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return customer, nil
}

func (r *fakeCustomerRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *fakeCustomerRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	for _, customer := range r.store.customers {
		if customer.TenantID == tenantID && customer.Code == code {
			return customer, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, customer := range r.store.customers {
		if customer.TenantID == tenantID {
			out = append(out, *customer)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, customer *partner.Customer) error {
	r.store.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	return r.Save(ctx, customer)
}

func (r *fakeCustomerRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.customers)), nil
}

type fakeSupplierRepo struct{ store *fakeStore }

func (r *fakeSupplierRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	supplier, ok := r.store.suppliers[id]
	if !ok || supplier.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return supplier, nil
}

func (r *fakeSupplierRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *fakeSupplierRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*partner.Supplier, error) {
	for _, supplier := range r.store.suppliers {
		if supplier.TenantID == tenantID && supplier.Code == code {
			return supplier, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSupplierRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]partner.Supplier, error) {
	var out []partner.Supplier
	for _, supplier := range r.store.suppliers {
		if supplier.TenantID == tenantID {
			out = append(out, *supplier)
		}
	}
	return out, nil
}

func (r *fakeSupplierRepo) Save(_ context.Context, supplier *partner.Supplier) error {
	r.store.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) SaveWithLock(ctx context.Context, supplier *partner.Supplier) error {
	return r.Save(ctx, supplier)
}

func (r *fakeSupplierRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.suppliers)), nil
}

type fakeEntryRepo struct{ store *fakeStore }

func (r *fakeEntryRepo) Save(_ context.Context, entry *partner.BalanceEntry) error {
	r.store.entries = append(r.store.entries, entry)
	return nil
}

func (r *fakeEntryRepo) FindByEntity(_ context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, _ shared.Filter) ([]partner.BalanceEntry, error) {
	var out []partner.BalanceEntry
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.EntityKind == kind && e.EntityID == entityID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) FindBySource(_ context.Context, tenantID, sourceID uuid.UUID) ([]partner.BalanceEntry, error) {
	var out []partner.BalanceEntry
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.SourceID != nil && *e.SourceID == sourceID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) CountByEntity(_ context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.EntityKind == kind && e.EntityID == entityID {
			n++
		}
	}
	return n, nil
}

func (r *fakeEntryRepo) SumDeltasSince(_ context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.EntityKind == kind && e.EntityID == entityID && e.CreatedAt.After(since) {
			sum = sum.Add(e.Delta)
		}
	}
	return sum, nil
}

type fakeMovementRepo struct{ store *fakeStore }

func (r *fakeMovementRepo) Save(_ context.Context, movement *inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, movement)
	return nil
}

func (r *fakeMovementRepo) SaveBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	for _, m := range movements {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMovementRepo) FindByItem(_ context.Context, tenantID, itemID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.ItemID == itemID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindBySource(_ context.Context, tenantID, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.SourceID != nil && *m.SourceID == sourceID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) CountByItem(_ context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

type fakeSaleRepo struct{ store *fakeStore }

func (r *fakeSaleRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	sale, ok := r.store.sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return sale, nil
}

func (r *fakeSaleRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*trade.Sale, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *fakeSaleRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*trade.Sale, error) {
	for _, sale := range r.store.sales {
		if sale.TenantID == tenantID && sale.Number == number {
			return sale, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSaleRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]trade.Sale, error) {
	var out []trade.Sale
	for _, sale := range r.store.sales {
		if sale.TenantID == tenantID {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ shared.Filter) ([]trade.Sale, error) {
	var out []trade.Sale
	for _, sale := range r.store.sales {
		if sale.TenantID == tenantID && sale.CustomerID != nil && *sale.CustomerID == customerID {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) Save(_ context.Context, sale *trade.Sale) error {
	r.store.sales[sale.ID] = sale
	return nil
}

func (r *fakeSaleRepo) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	return r.Save(ctx, sale)
}

func (r *fakeSaleRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.sales)), nil
}

func (r *fakeSaleRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.saleSeq++
	return fmt.Sprintf("SA-%d-%05d", time.Now().Year(), r.store.saleSeq), nil
}

type fakePurchaseRepo struct{ store *fakeStore }

func (r *fakePurchaseRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.Purchase, error) {
	purchase, ok := r.store.purchases[id]
	if !ok || purchase.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return purchase, nil
}

func (r *fakePurchaseRepo) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*trade.Purchase, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *fakePurchaseRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*trade.Purchase, error) {
	for _, purchase := range r.store.purchases {
		if purchase.TenantID == tenantID && purchase.Number == number {
			return purchase, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePurchaseRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]trade.Purchase, error) {
	var out []trade.Purchase
	for _, purchase := range r.store.purchases {
		if purchase.TenantID == tenantID {
			out = append(out, *purchase)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) FindBySupplier(_ context.Context, tenantID, supplierID uuid.UUID, _ shared.Filter) ([]trade.Purchase, error) {
	var out []trade.Purchase
	for _, purchase := range r.store.purchases {
		if purchase.TenantID == tenantID && purchase.SupplierID == supplierID {
			out = append(out, *purchase)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) Save(_ context.Context, purchase *trade.Purchase) error {
	r.store.purchases[purchase.ID] = purchase
	return nil
}

func (r *fakePurchaseRepo) SaveWithLock(ctx context.Context, purchase *trade.Purchase) error {
	return r.Save(ctx, purchase)
}

func (r *fakePurchaseRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.purchases)), nil
}

func (r *fakePurchaseRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.purchaseSeq++
	return fmt.Sprintf("PU-%d-%05d", time.Now().Year(), r.store.purchaseSeq), nil
}

type fakeCRetRepo struct{ store *fakeStore }

func (r *fakeCRetRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.CustomerReturn, error) {
	ret, ok := r.store.customerReturns[id]
	if !ok || ret.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return ret, nil
}

func (r *fakeCRetRepo) FindBySale(_ context.Context, tenantID, saleID uuid.UUID) ([]trade.CustomerReturn, error) {
	var out []trade.CustomerReturn
	for _, ret := range r.store.customerReturns {
		if ret.TenantID == tenantID && ret.SaleID == saleID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeCRetRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]trade.CustomerReturn, error) {
	var out []trade.CustomerReturn
	for _, ret := range r.store.customerReturns {
		if ret.TenantID == tenantID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeCRetRepo) Save(_ context.Context, ret *trade.CustomerReturn) error {
	r.store.customerReturns[ret.ID] = ret
	return nil
}

func (r *fakeCRetRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.customerReturns)), nil
}

func (r *fakeCRetRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.cretSeq++
	return fmt.Sprintf("CR-%d-%05d", time.Now().Year(), r.store.cretSeq), nil
}

type fakeSRetRepo struct{ store *fakeStore }

func (r *fakeSRetRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.SupplierReturn, error) {
	ret, ok := r.store.supplierReturns[id]
	if !ok || ret.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return ret, nil
}

func (r *fakeSRetRepo) FindByPurchase(_ context.Context, tenantID, purchaseID uuid.UUID) ([]trade.SupplierReturn, error) {
	var out []trade.SupplierReturn
	for _, ret := range r.store.supplierReturns {
		if ret.TenantID == tenantID && ret.PurchaseID == purchaseID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeSRetRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]trade.SupplierReturn, error) {
	var out []trade.SupplierReturn
	for _, ret := range r.store.supplierReturns {
		if ret.TenantID == tenantID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeSRetRepo) Save(_ context.Context, ret *trade.SupplierReturn) error {
	r.store.supplierReturns[ret.ID] = ret
	return nil
}

func (r *fakeSRetRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.supplierReturns)), nil
}

func (r *fakeSRetRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.sretSeq++
	return fmt.Sprintf("SR-%d-%05d", time.Now().Year(), r.store.sretSeq), nil
}

type fakePaymentRepo struct{ store *fakeStore }

func (r *fakePaymentRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.Payment, error) {
	payment, ok := r.store.payments[id]
	if !ok || payment.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

func (r *fakePaymentRepo) FindByEntity(_ context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, _ shared.Filter) ([]trade.Payment, error) {
	var out []trade.Payment
	for _, payment := range r.store.payments {
		if payment.TenantID == tenantID && payment.Kind() == kind && payment.EntityID() == entityID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]trade.Payment, error) {
	var out []trade.Payment
	for _, payment := range r.store.payments {
		if payment.TenantID == tenantID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *trade.Payment) error {
	r.store.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.store.payments)), nil
}

func (r *fakePaymentRepo) GenerateNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.paymentSeq++
	return fmt.Sprintf("PY-%d-%05d", time.Now().Year(), r.store.paymentSeq), nil
}

// fakeIdempotencyStore is a minimal claim map without TTL handling.
type fakeIdempotencyStore struct {
	keys map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Clear(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*fakeIdempotencyStore)(nil)
