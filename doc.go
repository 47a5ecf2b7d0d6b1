// Package beanpod is an inversion-of-control container: beans are declared
// as definitions, wired by type, by id or from property values, and driven
// through a fixed lifecycle from construction to destruction.
//
// # Definitions
//
// A definition names a bean and says how to produce it:
//
//	c := beanpod.New()
//	c.Register(
//	    beanpod.Define("config", beanpod.Constructor(NewConfig)),
//	    beanpod.Define("db", beanpod.Constructor(NewDB, beanpod.Value("db.url"))),
//	    beanpod.Define("repo", beanpod.Constructor(NewRepo), beanpod.As[Repository]()),
//	)
//
// Producers are Constructor, FactoryMethod (the first argument is another
// bean, the classic inter-bean factory call), Instance for prebuilt values
// and Candidates for several constructors at once.
//
// # Injection points
//
// Every constructor argument is an injection point. Without a Param it is
// Auto: the single bean providing the argument's type. Params change that:
//
//	beanpod.Qualifier("primary")            // the bean with this id
//	beanpod.ByCapability[Store]()           // the single bean providing Store
//	beanpod.Value("retries").Default("1")   // a property, converted
//	beanpod.Literal("30s")                  // a fixed value, converted
//	beanpod.Auto().Optional()               // zero value when nothing matches
//
// Constructor arguments of type context.Context receive the resolution
// context. Pass it on when a constructor looks beans up itself.
//
// Properties are injected after construction, through WithSetter or struct
// tags on the produced type:
//
//	type Service struct {
//	    Repo    Repository `inject:""`
//	    Mailer  *Mailer    `inject:"smtpMailer,optional"`
//	    Retries int        `value:"retries:3"`
//	}
//
// Constructor dependencies may not form a cycle; one is reported as a
// CircularDependency error carrying the path, for example [a b a], before
// any constructor runs. Setter and field dependencies may point back at the
// bean being built: singletons expose an early reference once created.
//
// # Scopes
//
// Singleton beans are built once, even under concurrent first requests, and
// destroyed on Close. Prototype beans are built on every request and never
// tracked, so their destroy callbacks never run.
//
// # Lifecycle
//
// Each bean moves through Created, NameBound, FactoryBound, PropertiesSet,
// Initialized and Ready. Callbacks hook the phases:
//
//	beanpod.OnBeanName(func(s *Service, id string) { ... })
//	beanpod.OnFactory(func(s *Service, f beanpod.Factory) error { ... })
//	beanpod.OnInit(func(ctx context.Context, s *Service) error { ... })
//	beanpod.OnDestroy(func(ctx context.Context, s *Service) error { ... })
//
// Close destroys singletons in reverse creation order. A failing destroy
// callback is reported but never stops the others.
//
// # Running
//
//	c, err := beanpod.Startup(ctx, defs, property.Env("APP_"))
//	c.RegisterShutdownHook() // SIGINT or SIGTERM closes the container
//	<-c.Done()
//
// Or let Run do all of it:
//
//	c.Run(ctx)
//
// # Modules
//
// Modules group definitions and include other modules:
//
//	infra := beanpod.NewModule("infra").Add(dbDef, cacheDef)
//	app := beanpod.NewModule("app").Include(infra).Add(serviceDef)
//	c.Load(app)
//
// The manifest package loads definitions from YAML, the property package
// provides property sources and the metrics package exports Prometheus
// metrics from the container observers.
package beanpod
