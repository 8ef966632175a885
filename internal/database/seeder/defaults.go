package seeder

func Defaults() []Seeder {
	return []Seeder{
		LookupSeeder{},
		TemplateSeeder{},
	}
}
