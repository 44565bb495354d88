// Package beatstore provides a composable beat-marketplace engine for Go applications.
//
// Beatstore is designed as a library, not a service. Import it directly into
// your Go application and mount your own transport on top. It provides:
//
//   - A beat catalog with per-tier pricing, discounts, and availability flags
//   - An append-only sale ledger that is the sole source of entitlement truth
//   - License tiers (basic < premium < exclusive) gating file downloads
//   - Payment flows for Stripe payment intents and PayPal orders
//   - Bilingual license contract delivery (Spanish and English PDFs)
//   - Account management with email and Google sign-in
//   - Transactional email via Resend
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/stereohaus/beatstore"
//	    "github.com/stereohaus/beatstore/store/memory"
//	)
//
//	engine := beatstore.New(memory.New(),
//	    beatstore.WithIntents(stripeProvider),
//	    beatstore.WithOrders(paypalProvider),
//	)
//
//	// Start the engine (migrates the store, begins background workers)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Beats are catalog products with one price per license tier:
//
//	beat := &catalog.Beat{
//	    Name:        "Midnight Drive",
//	    Genre:       "Trap",
//	    PriceBasic:  beatstore.USD(2999),
//	    PreviewFile: "midnight-drive.mp3",
//	}
//
// Sales are the only entitlement authority. A buyer owns whatever the
// highest-tier sale record in the ledger grants, and nothing else:
//
//	tier, owned, err := engine.ResolveEntitlement(ctx, email, beatID)
//
// Downloads are gated by what the owned tier grants:
//
//	ref, err := engine.FetchFile(ctx, email, beatID, license.FileLossless)
//
// # Payments
//
// Card payments go through a Stripe payment intent; the sale is recorded
// only after the intent reports success. PayPal flows create a server-side
// order snapshot and record sales at capture, never trusting resubmitted
// item lists. Confirming or capturing the same payment twice converges on
// the already-recorded sale.
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest
// currency unit (cents for USD, centavos for MXN).
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	beat_01h2xcejqtf2nbrexx3vqjhp41  // Beat ID
//	sale_01h2xcejqtf2nbrexx3vqjhp41  // Sale ID
//	user_01h455vb4pex5vsknk084sn02q  // Account ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package beatstore
