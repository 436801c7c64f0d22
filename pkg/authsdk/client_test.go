package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLookupBarcode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/product-from-barcode/", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["barcode_number"] == "000" {
			respond(http.StatusOK, `{"products":[]}`)(w, r)
			return
		}
		respond(http.StatusOK, `{"products":[{"title":"Oat Milk","size":"1L","images":["http://img/1.png"],
			"stores":[{"name":"Costco","price":3.10,"last_update":"2023-10-01"},
			          {"name":"Walmart Canada","price":"4.97","last_update":"2023-10-24 03:01:46"}]}]}`)(w, r)
	})

	result, err := c.LookupBarcode(ctx, "0064200116473")
	require.NoError(t, err)
	require.False(t, result.Empty())

	p, ok := result.First()
	require.True(t, ok)
	require.Equal(t, "Oat Milk", p.Title)
	require.Equal(t, "http://img/1.png", p.Image())

	price, ok := p.PriceAt(DefaultPriceStore)
	require.True(t, ok)
	require.True(t, decimal.RequireFromString("4.97").Equal(price.Price))
	require.Equal(t, "24th Oct 2023", price.LastUpdatedLabel())

	_, ok = p.PriceAt("Target")
	require.False(t, ok)

	empty, err := c.LookupBarcode(ctx, "000")
	require.NoError(t, err)
	require.True(t, empty.Empty())
	_, ok = empty.First()
	require.False(t, ok)
}

func TestFormatDay(t *testing.T) {
	t.Parallel()

	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st"}
	for day, want := range tests {
		got := FormatDay(time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC))
		require.Equal(t, want+" Jan 2024", got)
	}
}

func TestStorePrice_UnparsableDateKeepsRaw(t *testing.T) {
	t.Parallel()
	require.Equal(t, "yesterday", StorePrice{LastUpdate: "yesterday"}.LastUpdatedLabel())
}

func TestSignupRequest_Validate(t *testing.T) {
	t.Parallel()

	ok := SignupRequest{Username: "sam", Email: "s@example.com", Password: "pw", ConfirmPassword: "pw"}
	require.NoError(t, ok.Validate())

	mismatch := ok
	mismatch.ConfirmPassword = "other"
	require.ErrorIs(t, mismatch.Validate(), ErrPasswordMismatch)

	missing := SignupRequest{Password: "pw", ConfirmPassword: "pw"}
	require.ErrorContains(t, missing.Validate(), "username, email")
}

func TestSignup_ConfirmPasswordNotSent(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.NotContains(t, in, "ConfirmPassword")
		require.Equal(t, "Sam", in["first_name"])
		respond(http.StatusCreated, `{"message":"Check your email."}`)(w, r)
	})

	msg, err := c.Signup(context.Background(), SignupRequest{
		Username: "sam", Email: "s@example.com", FirstName: "Sam", Password: "pw", ConfirmPassword: "pw",
	})
	require.NoError(t, err)
	require.Equal(t, "Check your email.", msg)
}

func TestConfirmEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores returned credentials", func(t *testing.T) {
		c, tokens, _ := newTestClient(t, respond(http.StatusOK, `{"message":"Email confirmed.","access":"a","refresh":"r"}`))
		msg, err := c.ConfirmEmail(ctx, "MQ", "tok")
		require.NoError(t, err)
		require.Equal(t, "Email confirmed.", msg)
		require.True(t, tokens.IsAuthenticated(ctx))
	})

	t.Run("error body", func(t *testing.T) {
		c, tokens, _ := newTestClient(t, respond(http.StatusBadRequest, `{"error":"Invalid or expired token."}`))
		_, err := c.ConfirmEmail(ctx, "MQ", "tok")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "Invalid or expired token.", apiErr.Message)
		require.False(t, tokens.IsAuthenticated(ctx))
	})

	t.Run("missing link parts", func(t *testing.T) {
		c, _, _ := newTestClient(t, respond(http.StatusOK, `{}`))
		_, err := c.ConfirmEmail(ctx, "", "tok")
		require.ErrorContains(t, err, "Invalid confirmation link.")
	})
}

func TestLoginLogout_PublishOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, tokens, _ := newTestClient(t, respond(http.StatusOK, `{"access":"a","refresh":"r"}`))
	var events int
	tokens.Subscribe(func() { events++ })

	require.NoError(t, c.Login(ctx, "sam", "pw"))
	require.Equal(t, 1, events)
	require.NoError(t, c.Logout(ctx))
	require.Equal(t, 2, events)
	require.False(t, tokens.IsAuthenticated(ctx))
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, tokens, _ := newTestClient(t, respond(http.StatusUnauthorized, `{"detail":"No active account found with the given credentials"}`))
	err := c.Login(ctx, "sam", "nope")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "No active account found with the given credentials", apiErr.Message)
	require.False(t, tokens.IsAuthenticated(ctx))
}

func TestGroceriesAndShops(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer a", r.Header.Get("Authorization"))
		switch r.Method + " " + r.URL.Path {
		case "GET /api/groceries/":
			respond(http.StatusOK, `[{"id":1,"name":"Milk","store_price":"2.50","manually_entered":true,"barcode_lookup_failed":false,"created_at":"2024-05-01T10:00:00Z"},
				{"id":2,"name":"Eggs","store_price":null,"manually_entered":false,"barcode_lookup_failed":true,"created_at":"2024-05-02T10:00:00Z"}]`)(w, r)
		case "POST /api/groceries/":
			var in map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, true, in["manually_entered"])
			respond(http.StatusCreated, `{"id":3,"name":"Bread","store_price":"1.99","manually_entered":true,"created_at":"2024-05-03T10:00:00Z"}`)(w, r)
		case "DELETE /api/groceries/3/":
			w.WriteHeader(http.StatusNoContent)
		case "GET /api/shops":
			respond(http.StatusOK, `[{"id":1,"name":"Walmart","address_line1":"1 Main St","city":"Houston","state":"TX","postal_code":"77099","country":"USA"}]`)(w, r)
		case "GET /api/shops/1":
			respond(http.StatusOK, `{"id":1,"name":"Walmart","address_line1":"1 Main St","address_line2":"Unit 4","city":"Houston","state":"TX","postal_code":"77099","country":"USA"}`)(w, r)
		default:
			respond(http.StatusNotFound, `{"detail":"Not found."}`)(w, r)
		}
	})
	require.NoError(t, tokens.SetTokens(ctx, "a", "r"))

	groceries, err := c.ListGroceries(ctx)
	require.NoError(t, err)
	require.Len(t, groceries, 2)
	require.True(t, groceries[0].StorePrice.Valid)
	require.Equal(t, "2.5", groceries[0].StorePrice.Decimal.String())
	require.False(t, groceries[1].StorePrice.Valid)

	added, err := c.AddGrocery(ctx, NewGrocery{Name: "Bread", StorePrice: decimal.NewNullDecimal(decimal.RequireFromString("1.99"))})
	require.NoError(t, err)
	require.Equal(t, int64(3), added.ID)
	require.NoError(t, c.DeleteGrocery(ctx, 3))

	shops, err := c.ListShops(ctx)
	require.NoError(t, err)
	require.Equal(t, "1 Main St, Houston, TX 77099, USA", shops[0].Address())

	shop, err := c.GetShop(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "1 Main St, Unit 4, Houston, TX 77099, USA", shop.Address())

	_, err = c.GetShop(ctx, 9)
	require.ErrorContains(t, err, "Not found.")
}

func TestFilterShops(t *testing.T) {
	t.Parallel()

	shops := []Shop{
		{Name: "Walmart", City: "Houston"},
		{Name: "Target", City: "Dallas", AddressLine2: "Suite 100"},
	}
	require.Len(t, FilterShops(shops, ""), 2)
	require.Equal(t, "Target", FilterShops(shops, "dal")[0].Name)
	require.Equal(t, "Target", FilterShops(shops, "SUITE")[0].Name)
	require.Empty(t, FilterShops(shops, "austin"))
}
