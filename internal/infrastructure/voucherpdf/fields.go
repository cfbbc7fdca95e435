package voucherpdf

// Template field names addressed by the binder and the visibility engine.
const (
	FieldCompanyName        = "Name_Of_Company"
	FieldCompanyDescription = "Company_description"
	FieldDocType            = "Type_Of_Doc"
	FieldVATRight           = "VAT_Num_Right"
	FieldVATLeft            = "VAT_Num_Left"
	FieldCRRight            = "CR_Num_Right"
	FieldCRLeft             = "CR_Num_Left"
	FieldReceiptNumber      = "Sanaad_Id"
	FieldDate               = "Sanaad_Date"
	FieldTime               = "Sanaad_Time"
	FieldPaymentMethod      = "Payment_Methode"
	FieldFromName           = "From_Name"
	FieldToName             = "To_Name"
	FieldNationalIDFrom     = "National_Id_From"
	FieldNationalIDTo       = "National_Id_To"
	FieldPurpose            = "Purpose"
	FieldAmountWithoutVAT   = "Amount_Without_VAT"
	FieldVAT                = "VAT"
	FieldTotal              = "Total"
	FieldAmountWithVAT      = "Amount_With_VAT"
	FieldAddress            = "Address"
	FieldPhone              = "Phone"

	FieldChequeBankName    = "Bank_Name_Bank"
	FieldChequeBankLabel   = "Bank_Name_Label"
	FieldChequeNumber      = "Cheque_Number"
	FieldChequeNumberLabel = "Cheque_Number_Label"

	FieldTransferBankName    = "Bank_Name_Transfer"
	FieldTransferBankLabel   = "Bank_Name_Trans_Label"
	FieldTransferNumber      = "Transfer_Number"
	FieldTransferNumberLabel = "Transfer_Number_Label"

	FieldLogoImage  = "Logo_af_image"
	FieldStampImage = "Stamp_af_image"

	// FieldAmountInWords is optional; templates without it are still valid.
	FieldAmountInWords = "Amount_In_Words"
)

// Group is a set of fields shown or hidden together
type Group struct {
	Name        string
	ValueFields []string
	LabelFields []string
}

// Fields returns value and label fields
func (g Group) Fields() []string {
	out := make([]string, 0, len(g.ValueFields)+len(g.LabelFields))
	out = append(out, g.ValueFields...)
	return append(out, g.LabelFields...)
}

var (
	// ChequeGroup holds the bank name and cheque number with their labels.
	ChequeGroup = Group{
		Name:        "cheque",
		ValueFields: []string{FieldChequeBankName, FieldChequeNumber},
		LabelFields: []string{FieldChequeBankLabel, FieldChequeNumberLabel},
	}
	// TransferGroup holds the bank name and transfer number with their labels.
	TransferGroup = Group{
		Name:        "transfer",
		ValueFields: []string{FieldTransferBankName, FieldTransferNumber},
		LabelFields: []string{FieldTransferBankLabel, FieldTransferNumberLabel},
	}
)

// TextFields lists every text field of the voucher template in layout order.
var TextFields = []string{
	FieldCompanyName, FieldCompanyDescription, FieldDocType,
	FieldVATRight, FieldVATLeft, FieldCRRight, FieldCRLeft,
	FieldReceiptNumber, FieldDate, FieldTime, FieldPaymentMethod,
	FieldFromName, FieldToName, FieldNationalIDFrom, FieldNationalIDTo,
	FieldPurpose, FieldAmountWithoutVAT, FieldVAT, FieldTotal, FieldAmountWithVAT,
	FieldAddress, FieldPhone,
	FieldChequeBankName, FieldChequeBankLabel, FieldChequeNumber, FieldChequeNumberLabel,
	FieldTransferBankName, FieldTransferBankLabel, FieldTransferNumber, FieldTransferNumberLabel,
}

// ImageFields lists the image-bearing button fields
var ImageFields = []string{FieldLogoImage, FieldStampImage}
