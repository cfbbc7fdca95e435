package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/voucherpdf"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// receiptFile is the JSON fixture accepted by render --receipt
type receiptFile struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	ReceiptNumber  string           `json:"receipt_number"`
	ReceiptType    string           `json:"receipt_type"`
	RecipientName  string           `json:"recipient_name"`
	Amount         decimal.Decimal  `json:"amount"`
	VATAmount      *decimal.Decimal `json:"vat_amount"`
	Description    string           `json:"description"`
	PaymentMethod  string           `json:"payment_method"`
	BankName       string           `json:"bank_name"`
	ChequeNumber   string           `json:"cheque_number"`
	TransferNumber string           `json:"transfer_number"`
	NationalIDFrom string           `json:"national_id_from"`
	NationalIDTo   string           `json:"national_id_to"`
	Date           string           `json:"date"`
	BarcodeID      string           `json:"barcode_id"`
}

// organizationFile is the JSON fixture accepted by render --organization
type organizationFile struct {
	ID                     uuid.UUID `json:"id"`
	NameAR                 string    `json:"name_ar"`
	NameEN                 string    `json:"name_en"`
	EntityType             string    `json:"entity_type"`
	CommercialRegistration string    `json:"commercial_registration"`
	TaxNumber              string    `json:"tax_number"`
	Address                string    `json:"address"`
	Phone                  string    `json:"phone"`
	Email                  string    `json:"email"`
	Description            string    `json:"description"`
	LogoURL                string    `json:"logo_url"`
	StampURL               string    `json:"stamp_url"`
}

func renderCmd(a *app) *cobra.Command {
	var (
		receiptPath  string
		orgPath      string
		outPath      string
		templatePath string
		noFlatten    bool
		includeQR    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a voucher PDF from JSON fixtures",
		Long: `Render fills the voucher template with a receipt and its organization
and writes the PDF. Logo and stamp references may be URLs or local paths.`,
		Example: "  voucherctl render --receipt r.json --organization o.json --out v.pdf --qr",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := readOrganization(orgPath)
			if err != nil {
				return err
			}
			receipt, err := readReceipt(receiptPath, org.ID)
			if err != nil {
				return err
			}

			renderCfg := a.cfg.Render
			if templatePath != "" {
				renderCfg.TemplatePath = templatePath
			}
			compositor, err := voucherpdf.NewCompositorFromConfig(renderCfg, nil, a.log)
			if err != nil {
				return err
			}

			policy := compositor.Policy()
			if noFlatten {
				policy.Flatten = false
			}
			if includeQR {
				policy.IncludeQR = true
			}

			pdf, err := compositor.Render(cmd.Context(), voucherpdf.Request{
				Receipt:      receipt,
				Organization: org,
				Policy:       &policy,
			})
			if err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
			if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", outPath, len(pdf))
			return err
		},
	}

	cmd.Flags().StringVar(&receiptPath, "receipt", "", "receipt JSON file")
	cmd.Flags().StringVar(&orgPath, "organization", "", "organization JSON file")
	cmd.Flags().StringVar(&outPath, "out", "voucher.pdf", "output PDF path")
	cmd.Flags().StringVar(&templatePath, "template", "", "template PDF (default: render.template_path or the development template)")
	cmd.Flags().BoolVar(&noFlatten, "no-flatten", false, "keep the form fields editable")
	cmd.Flags().BoolVar(&includeQR, "qr", false, "add a QR code next to the barcode")
	_ = cmd.MarkFlagRequired("receipt")
	_ = cmd.MarkFlagRequired("organization")
	return cmd
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func readOrganization(path string) (*voucher.Organization, error) {
	var in organizationFile
	if err := readJSON(path, &in); err != nil {
		return nil, err
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	base := shared.NewBaseEntity()
	base.ID = in.ID
	return &voucher.Organization{
		BaseEntity:             base,
		NameAR:                 in.NameAR,
		NameEN:                 in.NameEN,
		EntityType:             voucher.EntityType(in.EntityType),
		CommercialRegistration: in.CommercialRegistration,
		TaxNumber:              in.TaxNumber,
		Address:                in.Address,
		Phone:                  in.Phone,
		Email:                  in.Email,
		Description:            in.Description,
		LogoURL:                in.LogoURL,
		StampURL:               in.StampURL,
	}, nil
}

// readReceipt validates the fixture through the same constructor the service data passes
func readReceipt(path string, orgID uuid.UUID) (*voucher.Receipt, error) {
	var in receiptFile
	if err := readJSON(path, &in); err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.OrganizationID == uuid.Nil {
		in.OrganizationID = orgID
	}

	r, err := voucher.NewReceipt(voucher.NewReceiptParams{
		OrganizationID: in.OrganizationID,
		ReceiptNumber:  in.ReceiptNumber,
		Kind:           voucher.Kind(in.ReceiptType),
		RecipientName:  in.RecipientName,
		Amount:         in.Amount,
		VATAmount:      in.VATAmount,
		Description:    in.Description,
		PaymentMethod:  voucher.PaymentMethod(in.PaymentMethod),
		BankName:       in.BankName,
		ChequeNumber:   in.ChequeNumber,
		TransferNumber: in.TransferNumber,
		NationalIDFrom: in.NationalIDFrom,
		NationalIDTo:   in.NationalIDTo,
		Date:           date,
		BarcodeID:      in.BarcodeID,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid receipt in %s: %w", path, err)
	}
	if in.ID != uuid.Nil {
		r.ID = in.ID
	}
	return r, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
