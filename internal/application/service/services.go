package service

// Services bundles the application services built over one set of dependencies.
type Services struct {
	Tenants     TenantAppService
	Tasks       TaskAppService
	Attachments AttachmentAppService
	Dashboard   DashboardAppService
	Demo        *DemoService
}

// NewServices builds every application service over deps.
func NewServices(deps Dependencies) Services {
	tenants := NewTenantAppService(deps)
	tasks := NewTaskAppService(deps)
	return Services{
		Tenants:     tenants,
		Tasks:       tasks,
		Attachments: NewAttachmentAppService(deps),
		Dashboard:   NewDashboardAppService(deps),
		Demo:        NewDemoService(tenants, tasks, deps),
	}
}
