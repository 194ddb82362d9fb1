package domain

// Group — комната с контролем доступа. Инвариант: Admin всегда в Members.
// Комната без записи Group (или с пустым Admin) открыта для всех.
type Group struct {
	Name    string
	Admin   string
	Members []string
}
