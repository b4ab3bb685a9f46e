package main

import (
	"fmt"
	"log"
	"os"

	"may-space-server/routes"
	"may-space-server/storage"
	"may-space-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeUploads()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-User-ID, X-Admin-ID")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Uploaded images are served straight off disk.
	app.HandleDir("/uploads", iris.Dir(storage.UploadDir()))

	user := app.Party("/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
	}

	auth := app.Party("/api/auth")
	{
		auth.Post("/forgot-password", routes.ForgotPassword)
		auth.Post("/reset-password", routes.ResetPassword)
	}

	units := app.Party("/units", utils.UserIDHeaderMiddleware)
	{
		units.Post("/", routes.CreateUnit)
		units.Get("/", routes.GetMyUnits)
		units.Get("/{id:uint}", routes.GetUnit)
		units.Put("/{id:uint}", routes.UpdateUnit)
		units.Delete("/{id:uint}", routes.DeleteUnit)
	}

	public := app.Party("/public")
	{
		public.Get("/units", routes.GetPublicUnits)
	}

	bookings := app.Party("/bookings", utils.UserIDHeaderMiddleware)
	{
		bookings.Post("/", routes.CreateBooking)
		bookings.Get("/my", routes.GetMyBookings)
		bookings.Get("/rented", routes.GetRentedBookings)
		bookings.Put("/{id:uint}/status", routes.UpdateBookingStatus)
	}

	inquiries := app.Party("/inquiries", utils.UserIDHeaderMiddleware)
	{
		inquiries.Post("/", routes.CreateInquiry)
		inquiries.Post("/reply", routes.ReplyToInquiry)
		inquiries.Get("/", routes.GetInquiries)
	}

	admin := app.Party("/admin")
	{
		admin.Post("/register", routes.AdminRegister)
		admin.Post("/login", routes.AdminLogin)

		panel := admin.Party("/", utils.AdminIDHeaderMiddleware)
		panel.Get("/users", routes.AdminListUsers)
		panel.Delete("/users/{id:uint}", routes.AdminDeleteUser)
		panel.Get("/units", routes.AdminListUnits)
		panel.Delete("/units/{id:uint}", routes.AdminDeleteUnit)
		panel.Get("/activity", routes.AdminActivity)
		panel.Get("/report/statistics", routes.AdminReportStatistics)
		panel.Get("/report/bookings", routes.AdminReportBookings)
		panel.Get("/report/users", routes.AdminReportUsers)
		panel.Post("/export", routes.AdminCreateExport)
		panel.Get("/export/{id:string}", routes.AdminGetExport)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
