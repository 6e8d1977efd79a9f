package bootstrap

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"pulsebridge-consult/internal/repository"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/internal/usecase"
)

const expiryRunTimeout = 20 * time.Second

// RunExpiryWorker expires abandoned booking attempts once at startup and
// then every Booking.ExpiryInterval until SIGINT or SIGTERM. With once set
// it returns after the first run.
func (app *App) RunExpiryWorker(once bool) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	expiry := usecase.NewHoldExpiryUsecase(
		app.DB,
		app.Log,
		repository.NewBookingAttemptRepository(),
		repository.NewAvailabilityRepository(),
		app.EntityCache,
		service.NewAuditService(app.DB, app.Log, repository.NewAuditLogRepository()),
		app.Config.Booking.HoldTTL,
	)

	app.Log.Infof("Expiry worker running every %s", app.Config.Booking.ExpiryInterval)

	// Run once at startup
	app.runExpiryOnce(rootCtx, expiry)
	if once {
		return nil
	}

	ticker := time.NewTicker(app.Config.Booking.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			app.Log.Info("Shutdown signal received, stopping expiry worker")
			return nil
		case <-ticker.C:
			app.runExpiryOnce(rootCtx, expiry)
		}
	}
}

func (app *App) runExpiryOnce(ctx context.Context, expiry usecase.HoldExpiryUsecase) {
	runCtx, cancel := context.WithTimeout(ctx, expiryRunTimeout)
	defer cancel()

	start := time.Now()
	result, err := expiry.ExpireAbandoned(runCtx)
	if err != nil {
		app.Log.Errorf("Expiry run failed: %v", err)
		return
	}
	app.Log.Infof("Expiry run complete in %s: %d attempts expired, %d holds released",
		time.Since(start), result.AttemptsExpired, result.HoldsReleased)
}
