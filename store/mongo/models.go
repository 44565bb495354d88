package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/cart"
	"github.com/stereohaus/beatstore/catalog"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/license"
	"github.com/stereohaus/beatstore/order"
	"github.com/stereohaus/beatstore/sale"
	"github.com/stereohaus/beatstore/types"
)

// ==================== Beat models ====================

type beatModel struct {
	grove.BaseModel `grove:"table:beatstore_beats"`

	ID                     string            `grove:"id,pk"                    bson:"_id"`
	Name                   string            `grove:"name"                     bson:"name"`
	Genre                  string            `grove:"genre"                    bson:"genre"`
	BPM                    int               `grove:"bpm"                      bson:"bpm"`
	Key                    string            `grove:"key"                      bson:"key"`
	Mood                   string            `grove:"mood"                     bson:"mood"`
	PriceBasicCents        int64             `grove:"price_basic_cents"        bson:"price_basic_cents"`
	PriceBasicCurrency     string            `grove:"price_basic_currency"     bson:"price_basic_currency"`
	PricePremiumCents      int64             `grove:"price_premium_cents"      bson:"price_premium_cents"`
	PricePremiumCurrency   string            `grove:"price_premium_currency"   bson:"price_premium_currency"`
	PriceExclusiveCents    int64             `grove:"price_exclusive_cents"    bson:"price_exclusive_cents"`
	PriceExclusiveCurrency string            `grove:"price_exclusive_currency" bson:"price_exclusive_currency"`
	PreviewFile            string            `grove:"preview_file"             bson:"preview_file"`
	CoverFile              string            `grove:"cover_file"               bson:"cover_file"`
	LosslessFile           string            `grove:"lossless_file"            bson:"lossless_file,omitempty"`
	StemsFile              string            `grove:"stems_file"               bson:"stems_file,omitempty"`
	Plays                  int64             `grove:"plays"                    bson:"plays"`
	Sales                  int64             `grove:"sales"                    bson:"sales"`
	IsAvailable            bool              `grove:"is_available"             bson:"is_available"`
	IsLeavingSoon          bool              `grove:"is_leaving_soon"          bson:"is_leaving_soon"`
	IsHidden               bool              `grove:"is_hidden"                bson:"is_hidden"`
	DiscountPercent        int               `grove:"discount_percent"         bson:"discount_percent"`
	ExclusiveBuyer         string            `grove:"exclusive_buyer"          bson:"exclusive_buyer,omitempty"`
	ExclusiveSoldAt        *time.Time        `grove:"exclusive_sold_at"        bson:"exclusive_sold_at,omitempty"`
	Metadata               map[string]string `grove:"metadata"                 bson:"metadata,omitempty"`
	CreatedAt              time.Time         `grove:"created_at"               bson:"created_at"`
	UpdatedAt              time.Time         `grove:"updated_at"               bson:"updated_at"`
}

func toBeatModel(b *catalog.Beat) *beatModel {
	return &beatModel{
		ID:                     b.ID.String(),
		Name:                   b.Name,
		Genre:                  b.Genre,
		BPM:                    b.BPM,
		Key:                    b.Key,
		Mood:                   b.Mood,
		PriceBasicCents:        b.PriceBasic.Amount,
		PriceBasicCurrency:     b.PriceBasic.Currency,
		PricePremiumCents:      b.PricePremium.Amount,
		PricePremiumCurrency:   b.PricePremium.Currency,
		PriceExclusiveCents:    b.PriceExclusive.Amount,
		PriceExclusiveCurrency: b.PriceExclusive.Currency,
		PreviewFile:            b.PreviewFile,
		CoverFile:              b.CoverFile,
		LosslessFile:           b.LosslessFile,
		StemsFile:              b.StemsFile,
		Plays:                  b.Plays,
		Sales:                  b.Sales,
		IsAvailable:            b.IsAvailable,
		IsLeavingSoon:          b.IsLeavingSoon,
		IsHidden:               b.IsHidden,
		DiscountPercent:        b.DiscountPercent,
		ExclusiveBuyer:         b.ExclusiveBuyer,
		ExclusiveSoldAt:        b.ExclusiveSoldAt,
		Metadata:               b.Metadata,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

func fromBeatModel(m *beatModel) (*catalog.Beat, error) {
	beatID, err := id.ParseBeatID(m.ID)
	if err != nil {
		return nil, err
	}

	return &catalog.Beat{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:              beatID,
		Name:            m.Name,
		Genre:           m.Genre,
		BPM:             m.BPM,
		Key:             m.Key,
		Mood:            m.Mood,
		PriceBasic:      types.Money{Amount: m.PriceBasicCents, Currency: m.PriceBasicCurrency},
		PricePremium:    types.Money{Amount: m.PricePremiumCents, Currency: m.PricePremiumCurrency},
		PriceExclusive:  types.Money{Amount: m.PriceExclusiveCents, Currency: m.PriceExclusiveCurrency},
		PreviewFile:     m.PreviewFile,
		CoverFile:       m.CoverFile,
		LosslessFile:    m.LosslessFile,
		StemsFile:       m.StemsFile,
		Plays:           m.Plays,
		Sales:           m.Sales,
		IsAvailable:     m.IsAvailable,
		IsLeavingSoon:   m.IsLeavingSoon,
		IsHidden:        m.IsHidden,
		DiscountPercent: m.DiscountPercent,
		ExclusiveBuyer:  m.ExclusiveBuyer,
		ExclusiveSoldAt: m.ExclusiveSoldAt,
		Metadata:        m.Metadata,
	}, nil
}

// ==================== Genre models ====================

type genreModel struct {
	grove.BaseModel `grove:"table:beatstore_genres"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Name      string    `grove:"name"       bson:"name"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toGenreModel(g *catalog.Genre) *genreModel {
	return &genreModel{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func fromGenreModel(m *genreModel) (*catalog.Genre, error) {
	genreID, err := id.ParseGenreID(m.ID)
	if err != nil {
		return nil, err
	}

	return &catalog.Genre{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:   genreID,
		Name: m.Name,
	}, nil
}

// ==================== Sale models ====================

type saleModel struct {
	grove.BaseModel `grove:"table:beatstore_sales"`

	ID             string    `grove:"id,pk"           bson:"_id"`
	ProviderRef    string    `grove:"provider_ref"    bson:"provider_ref"`
	Provider       string    `grove:"provider"        bson:"provider"`
	BeatID         string    `grove:"beat_id"         bson:"beat_id"`
	BeatName       string    `grove:"beat_name"       bson:"beat_name"`
	Tier           string    `grove:"tier"            bson:"tier"`
	BuyerEmail     string    `grove:"buyer_email"     bson:"buyer_email"`
	BuyerName      string    `grove:"buyer_name"      bson:"buyer_name,omitempty"`
	BuyerPhone     string    `grove:"buyer_phone"     bson:"buyer_phone,omitempty"`
	AccountType    string    `grove:"account_type"    bson:"account_type,omitempty"`
	PromoOptIn     bool      `grove:"promo_opt_in"    bson:"promo_opt_in,omitempty"`
	AmountCents    int64     `grove:"amount_cents"    bson:"amount_cents"`
	AmountCurrency string    `grove:"amount_currency" bson:"amount_currency"`
	Status         string    `grove:"status"          bson:"status,omitempty"`
	CreatedAt      time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"      bson:"updated_at"`
}

func toSaleModel(s *sale.Sale) *saleModel {
	return &saleModel{
		ID:             s.ID.String(),
		ProviderRef:    s.ProviderRef,
		Provider:       s.Provider,
		BeatID:         s.BeatID.String(),
		BeatName:       s.BeatName,
		Tier:           string(s.Tier),
		BuyerEmail:     s.BuyerEmail,
		BuyerName:      s.BuyerName,
		BuyerPhone:     s.BuyerPhone,
		AccountType:    s.AccountType,
		PromoOptIn:     s.PromoOptIn,
		AmountCents:    s.Amount.Amount,
		AmountCurrency: s.Amount.Currency,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromSaleModel(m *saleModel) (*sale.Sale, error) {
	saleID, err := id.ParseSaleID(m.ID)
	if err != nil {
		return nil, err
	}
	beatID, err := id.ParseBeatID(m.BeatID)
	if err != nil {
		return nil, err
	}

	return &sale.Sale{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          saleID,
		ProviderRef: m.ProviderRef,
		Provider:    m.Provider,
		BeatID:      beatID,
		BeatName:    m.BeatName,
		Tier:        license.Tier(m.Tier),
		BuyerEmail:  m.BuyerEmail,
		BuyerName:   m.BuyerName,
		BuyerPhone:  m.BuyerPhone,
		AccountType: m.AccountType,
		PromoOptIn:  m.PromoOptIn,
		Amount:      types.Money{Amount: m.AmountCents, Currency: m.AmountCurrency},
		Status:      sale.Status(m.Status),
	}, nil
}

// ==================== Tier cache models ====================

type tierCacheModel struct {
	grove.BaseModel `grove:"table:beatstore_tier_cache"`

	CacheKey   string    `grove:"cache_key,pk" bson:"_id"`
	BuyerEmail string    `grove:"buyer_email"  bson:"buyer_email"`
	BeatID     string    `grove:"beat_id"      bson:"beat_id"`
	Tier       string    `grove:"tier"         bson:"tier"`
	ExpiresAt  time.Time `grove:"expires_at"   bson:"expires_at"`
	CreatedAt  time.Time `grove:"created_at"   bson:"created_at"`
}

func tierCacheKey(buyerEmail string, beatID id.BeatID) string {
	return account.NormalizeEmail(buyerEmail) + ":" + beatID.String()
}

// ==================== Cart models ====================

type cartModel struct {
	grove.BaseModel `grove:"table:beatstore_carts"`

	ID         string          `grove:"id,pk"       bson:"_id"`
	BuyerEmail string          `grove:"buyer_email" bson:"buyer_email"`
	Items      []cartItemModel `grove:"items"       bson:"items"`
	CreatedAt  time.Time       `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"  bson:"updated_at"`
}

type cartItemModel struct {
	BeatID        string `bson:"beat_id"`
	BeatName      string `bson:"beat_name"`
	CoverFile     string `bson:"cover_file,omitempty"`
	Tier          string `bson:"tier"`
	PriceCents    int64  `bson:"price_cents"`
	PriceCurrency string `bson:"price_currency"`
}

func toCartModel(c *cart.Cart) *cartModel {
	items := make([]cartItemModel, len(c.Items))
	for i, it := range c.Items {
		items[i] = cartItemModel{
			BeatID:        it.BeatID.String(),
			BeatName:      it.BeatName,
			CoverFile:     it.CoverFile,
			Tier:          string(it.Tier),
			PriceCents:    it.Price.Amount,
			PriceCurrency: it.Price.Currency,
		}
	}
	return &cartModel{
		ID:         c.ID.String(),
		BuyerEmail: account.NormalizeEmail(c.BuyerEmail),
		Items:      items,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func fromCartModel(m *cartModel) (*cart.Cart, error) {
	cartID, err := id.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	items := make([]cart.Item, len(m.Items))
	for i, it := range m.Items {
		beatID, beatErr := id.ParseBeatID(it.BeatID)
		if beatErr != nil {
			return nil, beatErr
		}
		items[i] = cart.Item{
			BeatID:    beatID,
			BeatName:  it.BeatName,
			CoverFile: it.CoverFile,
			Tier:      license.Tier(it.Tier),
			Price:     types.Money{Amount: it.PriceCents, Currency: it.PriceCurrency},
		}
	}

	return &cart.Cart{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         cartID,
		BuyerEmail: m.BuyerEmail,
		Items:      items,
	}, nil
}

// ==================== Pending order models ====================

type pendingOrderModel struct {
	grove.BaseModel `grove:"table:beatstore_orders"`

	ID            string           `grove:"id,pk"          bson:"_id"`
	ProviderRef   string           `grove:"provider_ref"   bson:"provider_ref"`
	Provider      string           `grove:"provider"       bson:"provider"`
	Items         []orderItemModel `grove:"items"          bson:"items"`
	TotalCents    int64            `grove:"total_cents"    bson:"total_cents"`
	TotalCurrency string           `grove:"total_currency" bson:"total_currency"`
	BuyerEmail    string           `grove:"buyer_email"    bson:"buyer_email"`
	BuyerName     string           `grove:"buyer_name"     bson:"buyer_name,omitempty"`
	BuyerPhone    string           `grove:"buyer_phone"    bson:"buyer_phone,omitempty"`
	Status        string           `grove:"status"         bson:"status"`
	CreatedAt     time.Time        `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time        `grove:"updated_at"     bson:"updated_at"`
}

type orderItemModel struct {
	BeatID        string `bson:"beat_id"`
	BeatName      string `bson:"beat_name"`
	Tier          string `bson:"tier"`
	PriceCents    int64  `bson:"price_cents"`
	PriceCurrency string `bson:"price_currency"`
}

func toPendingOrderModel(o *order.PendingOrder) *pendingOrderModel {
	items := make([]orderItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemModel{
			BeatID:        it.BeatID.String(),
			BeatName:      it.BeatName,
			Tier:          string(it.Tier),
			PriceCents:    it.Price.Amount,
			PriceCurrency: it.Price.Currency,
		}
	}
	return &pendingOrderModel{
		ID:            o.ID.String(),
		ProviderRef:   o.ProviderRef,
		Provider:      o.Provider,
		Items:         items,
		TotalCents:    o.Total.Amount,
		TotalCurrency: o.Total.Currency,
		BuyerEmail:    o.BuyerEmail,
		BuyerName:     o.BuyerName,
		BuyerPhone:    o.BuyerPhone,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func fromPendingOrderModel(m *pendingOrderModel) (*order.PendingOrder, error) {
	orderID, err := id.ParsePendingOrderID(m.ID)
	if err != nil {
		return nil, err
	}

	items := make([]order.ItemSnapshot, len(m.Items))
	for i, it := range m.Items {
		beatID, beatErr := id.ParseBeatID(it.BeatID)
		if beatErr != nil {
			return nil, beatErr
		}
		items[i] = order.ItemSnapshot{
			BeatID:   beatID,
			BeatName: it.BeatName,
			Tier:     license.Tier(it.Tier),
			Price:    types.Money{Amount: it.PriceCents, Currency: it.PriceCurrency},
		}
	}

	return &order.PendingOrder{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          orderID,
		ProviderRef: m.ProviderRef,
		Provider:    m.Provider,
		Items:       items,
		Total:       types.Money{Amount: m.TotalCents, Currency: m.TotalCurrency},
		BuyerEmail:  m.BuyerEmail,
		BuyerName:   m.BuyerName,
		BuyerPhone:  m.BuyerPhone,
		Status:      order.Status(m.Status),
	}, nil
}

// ==================== Account models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:beatstore_accounts"`

	ID           string     `grove:"id,pk"         bson:"_id"`
	Email        string     `grove:"email"         bson:"email"`
	PasswordHash string     `grove:"password_hash" bson:"password_hash,omitempty"`
	Username     string     `grove:"username"      bson:"username,omitempty"`
	Name         string     `grove:"name"          bson:"name,omitempty"`
	Picture      string     `grove:"picture"       bson:"picture,omitempty"`
	Phone        string     `grove:"phone"         bson:"phone,omitempty"`
	CountryCode  string     `grove:"country_code"  bson:"country_code,omitempty"`
	AuthProvider string     `grove:"auth_provider" bson:"auth_provider"`
	IsAdmin      bool       `grove:"is_admin"      bson:"is_admin"`
	IsVerified   bool       `grove:"is_verified"   bson:"is_verified"`
	LastLogin    *time.Time `grove:"last_login"    bson:"last_login,omitempty"`
	CreatedAt    time.Time  `grove:"created_at"    bson:"created_at"`
	UpdatedAt    time.Time  `grove:"updated_at"    bson:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:           a.ID.String(),
		Email:        account.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		Username:     a.Username,
		Name:         a.Name,
		Picture:      a.Picture,
		Phone:        a.Phone,
		CountryCode:  a.CountryCode,
		AuthProvider: string(a.AuthProvider),
		IsAdmin:      a.IsAdmin,
		IsVerified:   a.IsVerified,
		LastLogin:    a.LastLogin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	accountID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}

	return &account.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           accountID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Username:     m.Username,
		Name:         m.Name,
		Picture:      m.Picture,
		Phone:        m.Phone,
		CountryCode:  m.CountryCode,
		AuthProvider: account.Provider(m.AuthProvider),
		IsAdmin:      m.IsAdmin,
		IsVerified:   m.IsVerified,
		LastLogin:    m.LastLogin,
	}, nil
}

// ==================== Verification / reset / session models ====================

type verificationModel struct {
	grove.BaseModel `grove:"table:beatstore_verifications"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Email     string    `grove:"email"      bson:"email"`
	Code      string    `grove:"code"       bson:"code"`
	ExpiresAt time.Time `grove:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toVerificationModel(v *account.Verification) *verificationModel {
	return &verificationModel{
		ID:        v.ID.String(),
		Email:     account.NormalizeEmail(v.Email),
		Code:      v.Code,
		ExpiresAt: v.ExpiresAt,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func fromVerificationModel(m *verificationModel) (*account.Verification, error) {
	vID, err := id.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	return &account.Verification{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        vID,
		Email:     m.Email,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
	}, nil
}

type resetTokenModel struct {
	grove.BaseModel `grove:"table:beatstore_resets"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Email     string    `grove:"email"      bson:"email"`
	Token     string    `grove:"token"      bson:"token"`
	ExpiresAt time.Time `grove:"expires_at" bson:"expires_at"`
	Used      bool      `grove:"used"       bson:"used"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toResetTokenModel(r *account.ResetToken) *resetTokenModel {
	return &resetTokenModel{
		ID:        r.ID.String(),
		Email:     account.NormalizeEmail(r.Email),
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
		Used:      r.Used,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromResetTokenModel(m *resetTokenModel) (*account.ResetToken, error) {
	rID, err := id.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	return &account.ResetToken{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        rID,
		Email:     m.Email,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		Used:      m.Used,
	}, nil
}

type sessionModel struct {
	grove.BaseModel `grove:"table:beatstore_sessions"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Token     string    `grove:"token"      bson:"token"`
	AccountID string    `grove:"account_id" bson:"account_id"`
	ExpiresAt time.Time `grove:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toSessionModel(s *account.Session) *sessionModel {
	return &sessionModel{
		ID:        s.ID.String(),
		Token:     s.Token,
		AccountID: s.AccountID.String(),
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromSessionModel(m *sessionModel) (*account.Session, error) {
	sID, err := id.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	return &account.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        sID,
		Token:     m.Token,
		AccountID: accountID,
		ExpiresAt: m.ExpiresAt,
	}, nil
}
