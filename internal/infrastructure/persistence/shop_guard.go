package persistence

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ErrShopIDRequired is returned when a shop-scoped record is inserted without its shop
var ErrShopIDRequired = errors.New("shop_id is required on shop-scoped records")

// RegisterShopGuard rejects inserts of shop-scoped records whose ShopID is unset
func RegisterShopGuard(db *gorm.DB) {
	_ = db.Callback().Create().Before("gorm:create").Register("duka:shop_guard", requireShopID)
}

func requireShopID(db *gorm.DB) {
	if db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.LookUpField("ShopID")
	if field == nil {
		return
	}

	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if missingShopID(db, field, reflect.Indirect(rv.Index(i))) {
				_ = db.AddError(ErrShopIDRequired)
				return
			}
		}
	case reflect.Struct:
		if missingShopID(db, field, rv) {
			_ = db.AddError(ErrShopIDRequired)
		}
	}
}

func missingShopID(db *gorm.DB, field *schema.Field, rv reflect.Value) bool {
	v, zero := field.ValueOf(db.Statement.Context, rv)
	if zero {
		return true
	}
	id, ok := v.(uuid.UUID)
	return ok && id == uuid.Nil
}
