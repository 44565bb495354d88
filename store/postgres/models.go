package postgres

import (
	"encoding/json"
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

	ID                     string            `grove:"id,pk"`
	Name                   string            `grove:"name"`
	Genre                  string            `grove:"genre"`
	BPM                    int               `grove:"bpm"`
	Key                    string            `grove:"key"`
	Mood                   string            `grove:"mood"`
	PriceBasicCents        int64             `grove:"price_basic_cents"`
	PriceBasicCurrency     string            `grove:"price_basic_currency"`
	PricePremiumCents      int64             `grove:"price_premium_cents"`
	PricePremiumCurrency   string            `grove:"price_premium_currency"`
	PriceExclusiveCents    int64             `grove:"price_exclusive_cents"`
	PriceExclusiveCurrency string            `grove:"price_exclusive_currency"`
	PreviewFile            string            `grove:"preview_file"`
	CoverFile              string            `grove:"cover_file"`
	LosslessFile           string            `grove:"lossless_file"`
	StemsFile              string            `grove:"stems_file"`
	Plays                  int64             `grove:"plays"`
	Sales                  int64             `grove:"sales"`
	IsAvailable            bool              `grove:"is_available"`
	IsLeavingSoon          bool              `grove:"is_leaving_soon"`
	IsHidden               bool              `grove:"is_hidden"`
	DiscountPercent        int               `grove:"discount_percent"`
	ExclusiveBuyer         string            `grove:"exclusive_buyer"`
	ExclusiveSoldAt        *time.Time        `grove:"exclusive_sold_at"`
	Metadata               map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt              time.Time         `grove:"created_at"`
	UpdatedAt              time.Time         `grove:"updated_at"`
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

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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

	ID             string    `grove:"id,pk"`
	ProviderRef    string    `grove:"provider_ref"`
	Provider       string    `grove:"provider"`
	BeatID         string    `grove:"beat_id"`
	BeatName       string    `grove:"beat_name"`
	Tier           string    `grove:"tier"`
	BuyerEmail     string    `grove:"buyer_email"`
	BuyerName      string    `grove:"buyer_name"`
	BuyerPhone     string    `grove:"buyer_phone"`
	AccountType    string    `grove:"account_type"`
	PromoOptIn     bool      `grove:"promo_opt_in"`
	AmountCents    int64     `grove:"amount_cents"`
	AmountCurrency string    `grove:"amount_currency"`
	Status         string    `grove:"status"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
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

	CacheKey   string    `grove:"cache_key,pk"`
	BuyerEmail string    `grove:"buyer_email"`
	BeatID     string    `grove:"beat_id"`
	Tier       string    `grove:"tier"`
	ExpiresAt  time.Time `grove:"expires_at"`
	CreatedAt  time.Time `grove:"created_at"`
}

func tierCacheKey(buyerEmail string, beatID id.BeatID) string {
	return account.NormalizeEmail(buyerEmail) + ":" + beatID.String()
}

// ==================== Cart models ====================

// itemJSON is the JSONB line-item shape shared by carts and pending orders.
type itemJSON struct {
	BeatID        string `json:"beat_id"`
	BeatName      string `json:"beat_name"`
	CoverFile     string `json:"cover_file,omitempty"`
	Tier          string `json:"tier"`
	PriceCents    int64  `json:"price_cents"`
	PriceCurrency string `json:"price_currency"`
}

type cartModel struct {
	grove.BaseModel `grove:"table:beatstore_carts"`

	ID         string          `grove:"id,pk"`
	BuyerEmail string          `grove:"buyer_email"`
	Items      json.RawMessage `grove:"items,type:jsonb"`
	CreatedAt  time.Time       `grove:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"`
}

func toCartModel(c *cart.Cart) *cartModel {
	items := make([]itemJSON, len(c.Items))
	for i, it := range c.Items {
		items[i] = itemJSON{
			BeatID:        it.BeatID.String(),
			BeatName:      it.BeatName,
			CoverFile:     it.CoverFile,
			Tier:          string(it.Tier),
			PriceCents:    it.Price.Amount,
			PriceCurrency: it.Price.Currency,
		}
	}
	raw, _ := json.Marshal(items) //nolint:errcheck // plain structs cannot fail

	return &cartModel{
		ID:         c.ID.String(),
		BuyerEmail: account.NormalizeEmail(c.BuyerEmail),
		Items:      raw,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func fromCartModel(m *cartModel) (*cart.Cart, error) {
	cartID, err := id.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	var raw []itemJSON
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &raw); err != nil {
			return nil, err
		}
	}

	items := make([]cart.Item, len(raw))
	for i, it := range raw {
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

	ID            string          `grove:"id,pk"`
	ProviderRef   string          `grove:"provider_ref"`
	Provider      string          `grove:"provider"`
	Items         json.RawMessage `grove:"items,type:jsonb"`
	TotalCents    int64           `grove:"total_cents"`
	TotalCurrency string          `grove:"total_currency"`
	BuyerEmail    string          `grove:"buyer_email"`
	BuyerName     string          `grove:"buyer_name"`
	BuyerPhone    string          `grove:"buyer_phone"`
	Status        string          `grove:"status"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toPendingOrderModel(o *order.PendingOrder) *pendingOrderModel {
	items := make([]itemJSON, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemJSON{
			BeatID:        it.BeatID.String(),
			BeatName:      it.BeatName,
			Tier:          string(it.Tier),
			PriceCents:    it.Price.Amount,
			PriceCurrency: it.Price.Currency,
		}
	}
	raw, _ := json.Marshal(items) //nolint:errcheck // plain structs cannot fail

	return &pendingOrderModel{
		ID:            o.ID.String(),
		ProviderRef:   o.ProviderRef,
		Provider:      o.Provider,
		Items:         raw,
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

	var raw []itemJSON
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &raw); err != nil {
			return nil, err
		}
	}

	items := make([]order.ItemSnapshot, len(raw))
	for i, it := range raw {
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

	ID           string     `grove:"id,pk"`
	Email        string     `grove:"email"`
	PasswordHash string     `grove:"password_hash"`
	Username     string     `grove:"username"`
	Name         string     `grove:"name"`
	Picture      string     `grove:"picture"`
	Phone        string     `grove:"phone"`
	CountryCode  string     `grove:"country_code"`
	AuthProvider string     `grove:"auth_provider"`
	IsAdmin      bool       `grove:"is_admin"`
	IsVerified   bool       `grove:"is_verified"`
	LastLogin    *time.Time `grove:"last_login"`
	CreatedAt    time.Time  `grove:"created_at"`
	UpdatedAt    time.Time  `grove:"updated_at"`
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

	ID        string    `grove:"id,pk"`
	Email     string    `grove:"email"`
	Code      string    `grove:"code"`
	ExpiresAt time.Time `grove:"expires_at"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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

	ID        string    `grove:"id,pk"`
	Email     string    `grove:"email"`
	Token     string    `grove:"token"`
	ExpiresAt time.Time `grove:"expires_at"`
	Used      bool      `grove:"used"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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

	ID        string    `grove:"id,pk"`
	Token     string    `grove:"token"`
	AccountID string    `grove:"account_id"`
	ExpiresAt time.Time `grove:"expires_at"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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
