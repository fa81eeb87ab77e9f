package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dissmar/storefront-backend/pkg/enums"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// Firestore document shapes. Prices travel as decimal strings because
// Firestore numbers are float64 and money must round-trip exactly.

type productDoc struct {
	Name      string `firestore:"name"`
	UnitPrice string `firestore:"unitPrice"`
	ImageRef  string `firestore:"imageRef,omitempty"`
	Category  string `firestore:"category,omitempty"`
}

func (d productDoc) toProduct(id string) (*models.ProductRef, error) {
	price, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "parse product price")
	}
	return &models.ProductRef{
		ID:        id,
		Name:      d.Name,
		UnitPrice: price,
		ImageRef:  d.ImageRef,
		Category:  d.Category,
	}, nil
}

type cartLineDoc struct {
	ProductID string `firestore:"productId"`
	Name      string `firestore:"name"`
	UnitPrice string `firestore:"unitPrice"`
	ImageRef  string `firestore:"imageRef,omitempty"`
	Category  string `firestore:"category,omitempty"`
	Quantity  int    `firestore:"quantity"`
}

type cartDoc struct {
	Items     []cartLineDoc `firestore:"items"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

func cartDocFromLines(lines []models.CartLine) cartDoc {
	items := make([]cartLineDoc, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLineDoc{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.UnitPrice.String(),
			ImageRef:  line.Product.ImageRef,
			Category:  line.Product.Category,
			Quantity:  line.Quantity,
		})
	}
	return cartDoc{Items: items, UpdatedAt: time.Now().UTC()}
}

func (d cartDoc) toLines() ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "parse cart line price")
		}
		lines = append(lines, models.CartLine{
			Product: models.ProductRef{
				ID:        item.ProductID,
				Name:      item.Name,
				UnitPrice: price,
				ImageRef:  item.ImageRef,
				Category:  item.Category,
			},
			Quantity: item.Quantity,
		})
	}
	return lines, nil
}

type favoriteDoc struct {
	ProductID string    `firestore:"productId"`
	Name      string    `firestore:"name"`
	UnitPrice string    `firestore:"unitPrice"`
	ImageRef  string    `firestore:"imageRef,omitempty"`
	AddedAt   time.Time `firestore:"addedAt"`
}

type favoritesDoc struct {
	Products  []favoriteDoc `firestore:"products"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

func favoritesDocFromEntries(entries []models.FavoriteEntry) favoritesDoc {
	products := make([]favoriteDoc, 0, len(entries))
	for _, entry := range entries {
		products = append(products, favoriteDoc{
			ProductID: entry.ID,
			Name:      entry.Name,
			UnitPrice: entry.UnitPrice.String(),
			ImageRef:  entry.ImageRef,
			AddedAt:   entry.AddedAt,
		})
	}
	return favoritesDoc{Products: products, UpdatedAt: time.Now().UTC()}
}

func (d favoritesDoc) toEntries() ([]models.FavoriteEntry, error) {
	entries := make([]models.FavoriteEntry, 0, len(d.Products))
	for _, product := range d.Products {
		price, err := decimal.NewFromString(product.UnitPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "parse favorite price")
		}
		entries = append(entries, models.FavoriteEntry{
			ID:        product.ProductID,
			Name:      product.Name,
			UnitPrice: price,
			ImageRef:  product.ImageRef,
			AddedAt:   product.AddedAt,
		})
	}
	return entries, nil
}

type orderDoc struct {
	UserID          string        `firestore:"userId"`
	Items           []cartLineDoc `firestore:"items"`
	Total           string        `firestore:"total"`
	ShippingAddress string        `firestore:"shippingAddress"`
	Status          string        `firestore:"status"`
	PlacedAt        time.Time     `firestore:"placedAt"`
	DeliveredAt     *time.Time    `firestore:"deliveredAt,omitempty"`
}

func orderDocFromDraft(draft models.OrderDraft) orderDoc {
	return orderDoc{
		UserID:          draft.UserID,
		Items:           cartDocFromLines(draft.Lines).Items,
		Total:           draft.Total.String(),
		ShippingAddress: draft.ShippingAddress,
		Status:          draft.Status.String(),
		PlacedAt:        draft.PlacedAt,
	}
}

func (d orderDoc) toOrder(id string) (*models.Order, error) {
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "parse order total")
	}
	lines, err := cartDoc{Items: d.Items}.toLines()
	if err != nil {
		return nil, err
	}
	status, err := enums.ParseOrderStatus(d.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "parse order status")
	}
	return &models.Order{
		ID:              id,
		UserID:          d.UserID,
		Lines:           lines,
		Total:           total,
		ShippingAddress: d.ShippingAddress,
		Status:          status,
		PlacedAt:        d.PlacedAt,
		DeliveredAt:     d.DeliveredAt,
	}, nil
}

type profileDoc struct {
	Email     string    `firestore:"email"`
	FullName  string    `firestore:"fullName"`
	Phone     string    `firestore:"phone"`
	Address   string    `firestore:"address"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (d profileDoc) toProfile(uid string) *models.UserProfile {
	return &models.UserProfile{
		UserID:    uid,
		Email:     d.Email,
		FullName:  d.FullName,
		Phone:     d.Phone,
		Address:   d.Address,
		UpdatedAt: d.UpdatedAt,
	}
}
