package cli

import (
	"fmt"
	"strconv"
	"strings"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
	"github.com/gabelluardo/grammY/pkg/scene"
)

// DemoScenes returns the scenes the binary ships with. The greeter is the
// minimal two-step conversation; checkout exercises branches, gated resume
// arms and backwards navigation.
func DemoScenes() []*scene.Scene {
	return []*scene.Scene{greeterScene(), checkoutScene()}
}

func greeterScene() *scene.Scene {
	return scene.New("greeter", func(b *scene.Builder) {
		b.Step("ask", func(ctx *composer.Context, next composer.Next) error {
			return ctx.Reply("What is your name?")
		})
		b.Wait("answer").On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
			ctx.Session.Data["name"] = strings.TrimSpace(ctx.Update.Text)
			return next()
		})
		b.Step("greet", func(ctx *composer.Context, next composer.Next) error {
			name, _ := ctx.Session.Data["name"].(string)
			return ctx.Reply(fmt.Sprintf("Hello, %s! Send /order to try the shop.", name))
		})
	})
}

func checkoutScene() *scene.Scene {
	quantity := func(u *domain.Update) bool {
		if u == nil || u.Kind != domain.KindMessage {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(u.Text))
		return err == nil && n > 0
	}
	bulk := func(u *domain.Update) bool {
		if u == nil {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(u.Text))
		return err == nil && n >= 10
	}

	return scene.New("checkout", func(b *scene.Builder) {
		b.Step("intro", func(ctx *composer.Context, next composer.Next) error {
			return ctx.Reply("How many units? Orders of 10 or more get a discount. /cancel to abort.")
		})
		b.Wait("quantity").
			Command("cancel", func(ctx *composer.Context, next composer.Next) error {
				if ctrl, ok := scene.FromContext(ctx); ok {
					if err := ctrl.Leave(); err != nil {
						return err
					}
				}
				return ctx.Reply("Order cancelled.")
			}).
			Filter(quantity, func(ctx *composer.Context, next composer.Next) error {
				n, _ := strconv.Atoi(strings.TrimSpace(ctx.Update.Text))
				ctx.Session.Data["quantity"] = n
				return next()
			})
		b.Branch("bulk", bulk, func(b *scene.Builder) {
			b.Step("offer", func(ctx *composer.Context, next composer.Next) error {
				return ctx.Reply("That is a bulk order. Apply the 10% discount? (yes/no, /back to change the amount)")
			})
			b.Wait("discount").
				Command("back", func(ctx *composer.Context, next composer.Next) error {
					ctrl, ok := scene.FromContext(ctx)
					if !ok {
						return nil
					}
					return ctrl.Back(1)
				}).
				Command("restart", func(ctx *composer.Context, next composer.Next) error {
					ctrl, ok := scene.FromContext(ctx)
					if !ok {
						return nil
					}
					return ctrl.Switch("checkout")
				}).
				On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
					yes := strings.EqualFold(strings.TrimSpace(ctx.Update.Text), "yes")
					ctx.Session.Data["discount"] = yes
					return next()
				})
		})
		b.Step("confirm", func(ctx *composer.Context, next composer.Next) error {
			n := asInt(ctx.Session.Data["quantity"])
			msg := fmt.Sprintf("Ordered %d units.", n)
			if discount, _ := ctx.Session.Data["discount"].(bool); discount {
				msg = fmt.Sprintf("Ordered %d units with 10%% off.", n)
			}
			return ctx.Reply(msg)
		})
	})
}

// asInt reads a numeric session value. Numbers arrive as int when set in
// the same invocation and as float64 after a JSON round trip.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// RegisterDemoHandlers mounts the command surface around the demo scenes.
// Updates no scene consumes end up here.
func RegisterDemoHandlers(bot *grammy.Bot) {
	bot.Command("start", func(ctx *composer.Context, next composer.Next) error {
		ctrl, ok := scene.FromContext(ctx)
		if !ok {
			return nil
		}
		return ctrl.Enter("greeter")
	})
	bot.Command("order", func(ctx *composer.Context, next composer.Next) error {
		ctrl, ok := scene.FromContext(ctx)
		if !ok {
			return nil
		}
		return ctrl.Enter("checkout")
	})
	bot.Command("help", func(ctx *composer.Context, next composer.Next) error {
		return ctx.Reply("Commands: /start greets you, /order starts a checkout, /help prints this.")
	})
	bot.On(domain.KindMessage, func(ctx *composer.Context, next composer.Next) error {
		return ctx.Reply("Nothing is waiting for that. Try /help.")
	})
}
