package flow

// Step names one stage of a linear multi-turn flow. Conversation state is
// stored as the step's string value; StepMainMenu is the default and the
// terminal state of every flow.
type Step string

const (
	StepMainMenu      Step = "main_menu"
	StepInventoryMenu Step = "inventory_menu"
	StepSalesMenu     Step = "sales_menu"
	StepViewSales     Step = "view_sales"

	// add-product chain
	StepAddProductName Step = "add_product_name"
	StepAddProductQty  Step = "add_product_qty"

	// edit-product chains
	StepEditProduct     Step = "edit_product"
	StepEditProductName Step = "edit_product_name"
	StepEditProductQty  Step = "edit_product_qty"

	// add-sale chain
	StepAddSaleProduct   Step = "add_sale_product"
	StepAddSaleQuantity  Step = "add_sale_quantity"
	StepAddSalePrice     Step = "add_sale_price"
	StepAddSaleCost      Step = "add_sale_cost"
	StepAddSaleExtraCost Step = "add_sale_extra_cost"
	StepAddSaleDate      Step = "add_sale_date"

	// edit-sale chain
	StepEditSaleQuantity  Step = "edit_sale_quantity"
	StepEditSalePrice     Step = "edit_sale_price"
	StepEditSaleCost      Step = "edit_sale_cost"
	StepEditSaleExtraCost Step = "edit_sale_extra_cost"
	StepEditSaleDate      Step = "edit_sale_date"
)
