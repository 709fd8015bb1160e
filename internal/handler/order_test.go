package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

func orderFixture(t *testing.T) (*OrderHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrderHandler(repository.NewOrderRepo(db), repository.NewProfileRepo(db)), mock
}

func orderContext(userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, userID)
	return c, rec
}

func expectProfile(mock sqlmock.Sqlmock, defaultAddressID any) {
	mock.ExpectQuery("SELECT id,user_id,phone,image,default_address_id FROM profiles WHERE user_id=? LIMIT 1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "phone", "image", "default_address_id"}).
			AddRow("profile-1", "user-1", nil, nil, defaultAddressID))
	mock.ExpectQuery("SELECT id,profile_id,district,city,post_code,details FROM addresses WHERE profile_id=?").
		WithArgs("profile-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "district", "city", "post_code", "details"}))
}

func TestOrderCreateWithoutDefaultAddress(t *testing.T) {
	h, mock := orderFixture(t)
	expectProfile(mock, nil)

	c, _ := orderContext("user-1")
	err := h.Create(c)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, apperr.CodeAddressNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateSnapshotsDefaultAddress(t *testing.T) {
	h, mock := orderFixture(t)
	expectProfile(mock, "addr-1")

	mock.ExpectQuery("SELECT id,profile_id,district,city,post_code,details FROM addresses WHERE id=? LIMIT 1").
		WithArgs("addr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "district", "city", "post_code", "details"}).
			AddRow("addr-1", "profile-1", "Kadikoy", "Istanbul", "34710", "Moda St 5"))

	shipping := "Moda St 5, Kadikoy, Istanbul, 34710"
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id,total_cents FROM carts WHERE user_id=? LIMIT 1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_cents"}).AddRow("cart-1", 2500))
	mock.ExpectQuery("SELECT product_id,quantity,price_cents FROM cart_items WHERE cart_id=?").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price_cents"}).
			AddRow("prod-1", 2, 1250))
	mock.ExpectExec("INSERT INTO orders (id, user_id, address, total_cents, status) VALUES (?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), "user-1", shipping, 2500, model.OrderPreparing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items (id, order_id, product_id, quantity, price_cents) VALUES (?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "prod-1", 2, 1250).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id=?").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET total_cents=0 WHERE id=?").
		WithArgs("cart-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := orderContext("user-1")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message model.Order `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, shipping, resp.Message.Address)
	assert.Equal(t, model.OrderPreparing, resp.Message.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateEmptyCart(t *testing.T) {
	h, mock := orderFixture(t)
	expectProfile(mock, "addr-1")

	mock.ExpectQuery("SELECT id,profile_id,district,city,post_code,details FROM addresses WHERE id=? LIMIT 1").
		WithArgs("addr-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "district", "city", "post_code", "details"}).
			AddRow("addr-1", "profile-1", "Kadikoy", "Istanbul", "34710", "Moda St 5"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id,total_cents FROM carts WHERE user_id=? LIMIT 1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_cents"}).AddRow("cart-1", 0))
	mock.ExpectQuery("SELECT product_id,quantity,price_cents FROM cart_items WHERE cart_id=?").
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price_cents"}))
	mock.ExpectRollback()

	c, _ := orderContext("user-1")
	err := h.Create(c)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeCartEmpty, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatAddressSkipsEmptyParts(t *testing.T) {
	got := formatAddress(model.Address{District: "Kadikoy", City: "Istanbul"})
	assert.Equal(t, "Kadikoy, Istanbul", got)
}
