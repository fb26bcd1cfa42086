/*

Check the reachability of a set of websites.
- Resolve Pushover credentials, target URLs and the check interval from the
  environment, falling back to appsettings.json and a secrets file.
- GET every URL in order each cycle; any 2xx status is UP, anything else is DOWN.
- Send a Pushover alert for every DOWN result and for every URL that cannot be checked.
- Sleep for the check interval and repeat until interrupted.

*/

package main

func main() {
	Execute()
}
