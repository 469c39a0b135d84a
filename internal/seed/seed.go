package seed

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"datagate/internal/models"
)

// FirstSetup ensures the default admin account exists.
func FirstSetup(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		return err
	}
	log.Println("Admin user ensured with email: admin@example.com")
	return nil
}

type sampleField struct {
	name, dataType, description string
}

type sampleTable struct {
	name, description string
	fields            []sampleField
}

type sampleSchema struct {
	name, description string
	tables            []sampleTable
}

var sampleSchemas = []sampleSchema{
	{
		name:        "Sales",
		description: "Sales department database schema",
		tables: []sampleTable{
			{"Customers", "Customer information table", []sampleField{
				{"customer_id", "integer", "Primary key"},
				{"name", "text", "Customer full name"},
				{"email", "text", "Customer email address"},
				{"phone", "text", "Customer phone number"},
				{"address", "text", "Customer address"},
				{"created_at", "timestamp", "Record creation date"},
			}},
			{"Orders", "Customer orders data", []sampleField{
				{"order_id", "integer", "Primary key"},
				{"customer_id", "integer", "Foreign key to Customers"},
				{"order_date", "date", "Date of order"},
				{"total_amount", "decimal", "Total order amount"},
				{"status", "text", "Order status"},
				{"payment_method", "text", "Payment method used"},
			}},
			{"Products", "Product catalog", []sampleField{
				{"product_id", "integer", "Primary key"},
				{"name", "text", "Product name"},
				{"description", "text", "Product description"},
				{"price", "decimal", "Product price"},
				{"category", "text", "Product category"},
				{"stock_quantity", "integer", "Available stock"},
			}},
		},
	},
	{
		name:        "Finance",
		description: "Financial department database schema",
		tables: []sampleTable{
			{"Invoices", "Customer invoices", []sampleField{
				{"invoice_id", "integer", "Primary key"},
				{"order_id", "integer", "Foreign key to Orders"},
				{"amount", "decimal", "Invoice amount"},
				{"issued_date", "date", "Date invoice was issued"},
				{"due_date", "date", "Invoice due date"},
				{"status", "text", "Payment status"},
			}},
			{"Expenses", "Company expenses", []sampleField{
				{"expense_id", "integer", "Primary key"},
				{"category", "text", "Expense category"},
				{"amount", "decimal", "Expense amount"},
				{"date", "date", "Date of expense"},
				{"department", "text", "Department responsible"},
				{"description", "text", "Expense description"},
			}},
		},
	},
	{
		name:        "HR",
		description: "Human resources database schema",
		tables: []sampleTable{
			{"Employees", "Employee information", []sampleField{
				{"employee_id", "integer", "Primary key"},
				{"name", "text", "Employee full name"},
				{"position", "text", "Job position"},
				{"department", "text", "Department"},
				{"salary", "decimal", "Employee salary"},
				{"hire_date", "date", "Date employee was hired"},
				{"email", "text", "Employee email"},
				{"phone", "text", "Employee phone number"},
			}},
			{"Departments", "Company departments", []sampleField{
				{"department_id", "integer", "Primary key"},
				{"name", "text", "Department name"},
				{"manager_id", "integer", "Department manager employee ID"},
				{"budget", "decimal", "Department annual budget"},
				{"location", "text", "Department location"},
			}},
			{"Leave_Requests", "Employee leave requests", []sampleField{
				{"request_id", "integer", "Primary key"},
				{"employee_id", "integer", "Foreign key to Employees"},
				{"start_date", "date", "Leave start date"},
				{"end_date", "date", "Leave end date"},
				{"status", "text", "Request status"},
				{"type", "text", "Leave type"},
				{"reason", "text", "Reason for leave"},
			}},
		},
	},
}

// SampleData loads the demo dataset: four department users, three
// schemas with their tables and fields, and the baseline access
// policies. Runs once; if schemas already exist it is a no-op.
func SampleData(db *gorm.DB) error {
	var existing int64
	if err := db.Model(&models.Schema{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Println("Sample data already present, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := map[string]*models.User{}
	for _, email := range []string{
		"sales_user@example.com",
		"finance_user@example.com",
		"hr_user@example.com",
		"manager@example.com",
	} {
		u := models.User{Email: email, PasswordHash: string(hash), Role: models.RoleUser}
		if err := db.Where("email = ?", email).FirstOrCreate(&u).Error; err != nil {
			return err
		}
		users[email] = &u
		log.Printf("Created user: %s", email)
	}

	type tableRef struct {
		schemaID int64
		table    models.Table
		fields   []models.Field
	}
	tables := map[string]tableRef{}

	for _, sc := range sampleSchemas {
		desc := sc.description
		schema := models.Schema{Name: sc.name, Description: &desc}
		if err := db.Create(&schema).Error; err != nil {
			return err
		}
		log.Printf("Created schema: %s", schema.Name)

		for _, tb := range sc.tables {
			tdesc := tb.description
			table := models.Table{Name: tb.name, Description: &tdesc, SchemaID: schema.ID}
			if err := db.Create(&table).Error; err != nil {
				return err
			}
			var fields []models.Field
			for _, f := range tb.fields {
				fdesc := f.description
				field := models.Field{Name: f.name, DataType: f.dataType, Description: &fdesc, TableID: table.ID}
				if err := db.Create(&field).Error; err != nil {
					return err
				}
				fields = append(fields, field)
			}
			tables[sc.name+"."+tb.name] = tableRef{schemaID: schema.ID, table: table, fields: fields}
		}
	}

	grant := func(user *models.User, ref tableRef, fields models.FieldList) error {
		p := models.AccessPolicy{
			UserID:   user.ID,
			SchemaID: ref.schemaID,
			TableID:  ref.table.ID,
			Effect:   models.EffectAllow,
			Fields:   fields,
		}
		return db.Create(&p).Error
	}

	// Department users get full table access, the manager a reduced
	// view of Employees (everything except salary).
	for _, name := range []string{"Sales.Customers", "Sales.Orders", "Sales.Products"} {
		if err := grant(users["sales_user@example.com"], tables[name], nil); err != nil {
			return err
		}
	}
	if err := grant(users["finance_user@example.com"], tables["Sales.Orders"],
		models.FieldList{"order_id", "customer_id", "order_date", "total_amount"}); err != nil {
		return err
	}
	for _, name := range []string{"Finance.Invoices", "Finance.Expenses"} {
		if err := grant(users["finance_user@example.com"], tables[name], nil); err != nil {
			return err
		}
	}
	for _, name := range []string{"HR.Employees", "HR.Departments", "HR.Leave_Requests"} {
		if err := grant(users["hr_user@example.com"], tables[name], nil); err != nil {
			return err
		}
	}

	employees := tables["HR.Employees"]
	var managerFields models.FieldList
	for _, f := range employees.fields {
		if f.Name != "salary" {
			managerFields = append(managerFields, f.Name)
		}
	}
	if err := grant(users["manager@example.com"], employees, managerFields); err != nil {
		return err
	}
	if err := grant(users["manager@example.com"], tables["HR.Leave_Requests"], nil); err != nil {
		return err
	}

	log.Println("Sample data initialization complete")
	return nil
}
