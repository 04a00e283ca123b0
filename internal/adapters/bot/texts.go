package bot

const (
	helpText = `Your command "%s" isn't recognized =(
List of available commands:
/getDailyTask — get the actual daily task
/Subscribe — start automatic sending of daily tasks
/Unsubscribe — stop automatic sending of daily tasks`

	startText = `Hi, %s! Every day LeetCode publishes a new challenge, and I can bring it to you.
/getDailyTask — get the actual daily task
/Subscribe — receive the daily task automatically
/Unsubscribe — stop receiving it`

	subscribedText        = "%s, you have <strong>successfully subscribed</strong>. You'll automatically receive the daily task every day."
	alreadySubscribedText = "%s, you have <strong>already subscribed</strong> for daily updates, nothing to do."
	unsubscribedText      = "%s, you have <strong>successfully unsubscribed</strong>. You'll not automatically receive daily tasks."
	notSubscribedText     = "%s, you were <strong>not subscribed</strong>. No additional actions required."

	noSuchTaskText = "There is not such dailyTask. Try another breach ;)"
	noSuchHintText = "There is no such hint for task %d"
	hintText       = "Hint #%d: %s"
	difficultyText = "Task difficulty: %s"
	apologyText    = "Something went completely wrong"
)

const (
	cmdStart          = "/start"
	cmdDailyTask      = "/getDailyTask"
	cmdSubscribe      = "/Subscribe"
	cmdUnsubscribe    = "/Unsubscribe"
	fallbackFirstName = "Friend"
)
