package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
)

const (
	cartsCollection     = "carts"
	favoritesCollection = "favorites"
	ordersCollection    = "orders"
	usersCollection     = "users"
	productsCollection  = "products"
)

// FirestoreGateway implements PersistenceGateway on Firestore.
//
// Collection design:
// - carts/{uid}:     items + updatedAt, full-doc overwrite per snapshot
// - favorites/{uid}: products + updatedAt, full-doc overwrite per snapshot
// - orders/{autoId}: immutable order records, queried by userId + placedAt
// - users/{uid}:     profile document
// - products/{id}:   catalog source, ordered by name
type FirestoreGateway struct {
	client *firestore.Client
}

// NewFirestoreGateway wraps a connected Firestore client.
func NewFirestoreGateway(client *firestore.Client) (*FirestoreGateway, error) {
	if client == nil {
		return nil, errors.New("firestore client is required")
	}
	return &FirestoreGateway{client: client}, nil
}

func (g *FirestoreGateway) GetCartSnapshot(ctx context.Context, userID string) ([]models.CartLine, bool, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := g.client.Collection(cartsCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load cart snapshot")
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode cart snapshot")
	}
	lines, err := doc.toLines()
	if err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

func (g *FirestoreGateway) PutCartSnapshot(ctx context.Context, userID string, lines []models.CartLine) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if _, err := g.client.Collection(cartsCollection).Doc(uid).Set(ctx, cartDocFromLines(lines)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save cart snapshot")
	}
	return nil
}

func (g *FirestoreGateway) GetFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, bool, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := g.client.Collection(favoritesCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load favorites")
	}

	var doc favoritesDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode favorites")
	}
	entries, err := doc.toEntries()
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (g *FirestoreGateway) PutFavorites(ctx context.Context, userID string, entries []models.FavoriteEntry) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if _, err := g.client.Collection(favoritesCollection).Doc(uid).Set(ctx, favoritesDocFromEntries(entries)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save favorites")
	}
	return nil
}

// CreateOrder persists a new order record and returns it with the
// Firestore-assigned identifier. The caller treats a returned error as
// "no order exists"; nothing here is partially applied.
func (g *FirestoreGateway) CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error) {
	if strings.TrimSpace(draft.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order draft user id is required")
	}
	if len(draft.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order draft has no lines")
	}

	ref := g.client.Collection(ordersCollection).NewDoc()
	doc := orderDocFromDraft(draft)
	if _, err := ref.Create(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order")
	}

	order, err := doc.toOrder(ref.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (g *FirestoreGateway) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snaps, err := g.client.Collection(ordersCollection).
		Where("userId", "==", uid).
		OrderBy("placedAt", firestore.Desc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list orders")
	}

	orders := make([]models.Order, 0, len(snaps))
	for _, snap := range snaps {
		var doc orderDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode order")
		}
		order, err := doc.toOrder(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (g *FirestoreGateway) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := g.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load profile")
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode profile")
	}
	return doc.toProfile(uid), nil
}

func (g *FirestoreGateway) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	_, err := g.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "fullName", Value: update.FullName},
		{Path: "phone", Value: update.Phone},
		{Path: "address", Value: update.Address},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update profile")
	}
	return nil
}

func (g *FirestoreGateway) ListProducts(ctx context.Context) ([]models.ProductRef, error) {
	snaps, err := g.client.Collection(productsCollection).
		OrderBy("name", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list products")
	}

	products := make([]models.ProductRef, 0, len(snaps))
	for _, snap := range snaps {
		var doc productDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode product")
		}
		product, err := doc.toProduct(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

var _ PersistenceGateway = (*FirestoreGateway)(nil)
